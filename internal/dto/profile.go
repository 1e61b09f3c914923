package dto

// CompleteProfileRequest fills the academic part of a fresh student account.
type CompleteProfileRequest struct {
	RollNo   string   `json:"rollno" validate:"required"`
	Branch   string   `json:"branch" validate:"required,branch"`
	Year     int      `json:"year" validate:"required,study_year"`
	CGPA     float64  `json:"cgpa" validate:"cgpa"`
	Phone    string   `json:"phone" validate:"omitempty,phone_in"`
	LinkedIn string   `json:"linkedin" validate:"omitempty,url"`
	Skills   []string `json:"skills" validate:"omitempty,dive,required"`
}

// UpdateProfileRequest is an allow-list of editable student fields.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name     *string   `json:"name" validate:"omitempty,min=1"`
	RollNo   *string   `json:"rollno" validate:"omitempty,min=1"`
	Branch   *string   `json:"branch" validate:"omitempty,branch"`
	Year     *int      `json:"year" validate:"omitempty,study_year"`
	CGPA     *float64  `json:"cgpa" validate:"omitempty,cgpa"`
	Phone    *string   `json:"phone" validate:"omitempty,phone_in"`
	LinkedIn *string   `json:"linkedin" validate:"omitempty,url"`
	Skills   *[]string `json:"skills"`
}

// ProfilePictureRequest carries a data URI or remote image URL.
type ProfilePictureRequest struct {
	ProfilePicture string `json:"profilePicture" validate:"required"`
}

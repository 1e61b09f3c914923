package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/pkg/config"
)

func TestPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712345678/profile-pictures/abc123.jpg": "profile-pictures/abc123",
		"https://res.cloudinary.com/demo/image/upload/abc123.png":                             "abc123",
		"https://res.cloudinary.com/demo/image/upload/v1/vacation.jpg":                        "vacation",
	}
	for in, want := range cases {
		got, err := PublicID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
}

func TestPublicIDRejectsForeignURL(t *testing.T) {
	_, err := PublicID("https://example.com/avatar.png")
	assert.Error(t, err)
}

func TestNewCloudinaryUploaderDisabledWithoutCredentials(t *testing.T) {
	_, err := NewCloudinaryUploader(config.UploadConfig{CloudName: "demo"})
	assert.ErrorIs(t, err, ErrDisabled)
}

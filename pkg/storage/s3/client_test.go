package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.S3Config {
	return config.S3Config{
		Region:          "us-east-1",
		Bucket:          "api-images-prod",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		KeyPrefix:       "valu",
		PublicURLPrefix: "https://api-images-prod.s3.amazonaws.com/",
		URLExpiry:       time.Hour,
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	c.newID = func() string { return "4b1c2d3e-0000-4000-8000-000000000001" }
	return c
}

func TestNewClientRequiresBucket(t *testing.T) {
	cfg := testConfig()
	cfg.Bucket = ""
	_, err := NewClient(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestSignedUploadURL(t *testing.T) {
	c := newTestClient(t)

	for _, fileType := range []string{"png", ".png", " PNG "} {
		got, err := c.SignedUploadURL(context.Background(), fileType)
		require.NoError(t, err)
		assert.Equal(t, "valu/4b1c2d3e-0000-4000-8000-000000000001.png", got.Path)

		u, err := url.Parse(got.URL)
		require.NoError(t, err)
		assert.Contains(t, u.Host, "api-images-prod")
		assert.True(t, strings.HasSuffix(u.Path, got.Path), u.Path)
		assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
		assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	}
}

func TestSignedUploadURLWithoutExtension(t *testing.T) {
	c := newTestClient(t)
	got, err := c.SignedUploadURL(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "valu/4b1c2d3e-0000-4000-8000-000000000001", got.Path)
}

func TestSignedReadURLStripsPublicPrefix(t *testing.T) {
	c := newTestClient(t)

	signed, err := c.SignedReadURL(context.Background(), "https://api-images-prod.s3.amazonaws.com/valu/avatar.jpg")
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/valu/avatar.jpg"), u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}

func TestSignedReadURLRequiresPath(t *testing.T) {
	c := newTestClient(t)
	_, err := c.SignedReadURL(context.Background(), "https://api-images-prod.s3.amazonaws.com/")
	require.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	c := newTestClient(t)
	assert.Equal(t, "valu/a.png", c.ObjectKey("valu/a.png"))
	assert.Equal(t, "valu/a.png", c.ObjectKey("/valu/a.png"))
	assert.Equal(t, "valu/a.png", c.ObjectKey("https://api-images-prod.s3.amazonaws.com/valu/a.png"))
}

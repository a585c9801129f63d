package bedrock

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAWSConfig(region string) aws.Config {
	return aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	}
}

func TestNewDefaults(t *testing.T) {
	e, err := New(testAWSConfig("us-east-1"), Config{})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, e.Model())
	assert.Equal(t, 1024, e.Dimension())
	assert.Equal(t, "us-east-1", e.region)
}

func TestNewRegionOverride(t *testing.T) {
	e, err := New(testAWSConfig("us-east-1"), Config{Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", e.region)
}

func TestNewMissingRegion(t *testing.T) {
	_, err := New(testAWSConfig(""), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}

func TestSignAddsAuthorization(t *testing.T) {
	e, err := New(testAWSConfig("us-east-1"), Config{})
	require.NoError(t, err)

	body := []byte(`{"inputText":"hello"}`)
	req, err := http.NewRequest(http.MethodPost,
		"https://bedrock-runtime.us-east-1.amazonaws.com/model/"+DefaultModel+"/invoke",
		bytes.NewReader(body))
	require.NoError(t, err)

	err = e.sign(context.Background(), req, body)
	require.NoError(t, err)

	auth := req.Header.Get("Authorization")
	assert.Contains(t, auth, "AWS4-HMAC-SHA256")
	assert.Contains(t, auth, "Credential=AKID")
	assert.Contains(t, auth, "us-east-1/bedrock/aws4_request")
	assert.NotEmpty(t, req.Header.Get("X-Amz-Date"))
}

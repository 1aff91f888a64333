package services

import (
	"errors"
	"fmt"
	"partnerhub-backend/config"
	"strings"
	"sync"
	"time"

	"github.com/aliyun/alibaba-cloud-sdk-go/services/sts"
	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// MediaURLTTL is how long a signed media URL stays valid.
const MediaURLTTL = 15 * time.Minute

// ErrStorageDisabled is returned when object storage is not configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// MediaSigner turns an object key into a time-limited download URL.
type MediaSigner interface {
	SignURL(objectKey string, ttl time.Duration) (string, error)
}

type STSCredentials struct {
	AccessKeyId     string `json:"accessKeyId"`
	AccessKeySecret string `json:"accessKeySecret"`
	SecurityToken   string `json:"securityToken"`
	Expiration      string `json:"expiration"`
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
}

// OSSMediaSigner signs URLs against an Aliyun OSS bucket. When a role ARN is
// configured it signs with STS credentials, refreshed shortly before they expire.
type OSSMediaSigner struct {
	cfg *config.Config

	mu      sync.Mutex
	creds   *STSCredentials
	expires time.Time
	now     func() time.Time
}

func NewOSSMediaSigner(cfg *config.Config) (*OSSMediaSigner, error) {
	if !cfg.OSSEnabled() {
		return nil, ErrStorageDisabled
	}
	return &OSSMediaSigner{cfg: cfg, now: time.Now}, nil
}

// Credentials returns STS credentials scoped to the media bucket, for clients
// that upload step inputs directly.
func (s *OSSMediaSigner) Credentials() (*STSCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creds != nil && s.now().Add(time.Minute).Before(s.expires) {
		return s.creds, nil
	}

	// STS client requires region ID without "oss-" prefix (e.g., "cn-beijing" instead of "oss-cn-beijing")
	stsRegion := s.cfg.OSSRegion
	if after, ok := strings.CutPrefix(stsRegion, "oss-"); ok {
		stsRegion = after
	}

	client, err := sts.NewClientWithAccessKey(stsRegion, s.cfg.OSSAccessKeyID, s.cfg.OSSAccessKeySecret)
	if err != nil {
		return nil, err
	}

	request := sts.CreateAssumeRoleRequest()
	request.Scheme = "https"
	request.RoleArn = s.cfg.OSSRoleArn
	request.RoleSessionName = "partnerhub-media"
	request.DurationSeconds = "3600"

	response, err := client.AssumeRole(request)
	if err != nil {
		return nil, err
	}

	creds := &STSCredentials{
		AccessKeyId:     response.Credentials.AccessKeyId,
		AccessKeySecret: response.Credentials.AccessKeySecret,
		SecurityToken:   response.Credentials.SecurityToken,
		Expiration:      response.Credentials.Expiration,
		Region:          s.cfg.OSSRegion,
		Bucket:          s.cfg.OSSBucketName,
	}
	expires, err := time.Parse(time.RFC3339, creds.Expiration)
	if err != nil {
		expires = s.now().Add(time.Hour)
	}
	s.creds, s.expires = creds, expires
	return creds, nil
}

func (s *OSSMediaSigner) bucket() (*oss.Bucket, error) {
	var (
		client *oss.Client
		err    error
	)
	if s.cfg.OSSRoleArn != "" {
		creds, credErr := s.Credentials()
		if credErr != nil {
			return nil, fmt.Errorf("failed to get STS token: %w", credErr)
		}
		client, err = oss.New(s.cfg.OSSEndpoint, creds.AccessKeyId, creds.AccessKeySecret,
			oss.SecurityToken(creds.SecurityToken))
	} else {
		client, err = oss.New(s.cfg.OSSEndpoint, s.cfg.OSSAccessKeyID, s.cfg.OSSAccessKeySecret)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}
	return client.Bucket(s.cfg.OSSBucketName)
}

func (s *OSSMediaSigner) SignURL(objectKey string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = MediaURLTTL
	}
	bucket, err := s.bucket()
	if err != nil {
		return "", err
	}
	return bucket.SignURL(strings.TrimPrefix(objectKey, "/"), oss.HTTPGet, int64(ttl.Seconds()))
}

// signMediaOutputs attaches a signed url to every structured output carrying an
// object_key. Outputs are copied, never modified in place.
func signMediaOutputs(signer MediaSigner, outputs []StepOutput) []StepOutput {
	if signer == nil {
		return outputs
	}
	signed := make([]StepOutput, len(outputs))
	for i, out := range outputs {
		signed[i] = out
		value, ok := out.Value.(map[string]interface{})
		if !ok {
			continue
		}
		key, _ := value["object_key"].(string)
		if key == "" {
			continue
		}
		url, err := signer.SignURL(key, MediaURLTTL)
		if err != nil {
			continue
		}
		withURL := make(map[string]interface{}, len(value)+1)
		for k, v := range value {
			withURL[k] = v
		}
		withURL["url"] = url
		signed[i].Value = withURL
	}
	return signed
}

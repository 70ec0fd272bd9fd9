package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tencentyun/cos-go-sdk-v5"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// cosStorage archives payloads in a Tencent Cloud COS bucket.
type cosStorage struct {
	client *cos.Client
}

var _ interfaces.ObjectStorage = (*cosStorage)(nil)

func newCOSStorage(bucket, region, secretID, secretKey string) (*cosStorage, error) {
	bucketURL := fmt.Sprintf("https://%s.cos.%s.myqcloud.com/", bucket, region)
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse cos bucket url: %w", err)
	}
	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{SecretID: secretID, SecretKey: secretKey},
	})
	return &cosStorage{client: client}, nil
}

func (s *cosStorage) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.Object.Put(ctx, key, bytes.NewReader(data), nil)
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (s *cosStorage) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return data, nil
}

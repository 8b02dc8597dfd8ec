package storage

import (
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func TestObjectURL(t *testing.T) {
	cli, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("minio.New: %v", err)
	}
	s := &Store{client: cli, bucketName: "images"}

	got := s.ObjectURL("acme/1234.jpg")
	if want := "http://localhost:9000/images/acme/1234.jpg"; got != want {
		t.Fatalf("ObjectURL = %q, want %q", got, want)
	}
}

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

func TestLocalUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "/static/audio/")
	ctx := context.Background()

	url, err := store.Upload(ctx, []byte("mp3"), "/sentence-trainer/7/12/pl.mp3", AudioContentType)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if url != "/static/audio/sentence-trainer/7/12/pl.mp3" {
		t.Fatalf("unexpected URL %q", url)
	}
	path := filepath.Join(dir, "sentence-trainer", "7", "12", "pl.mp3")
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "mp3" {
		t.Fatalf("expected file content to be written, got %q err=%v", data, err)
	}

	if err := store.Delete(ctx, "sentence-trainer/7/12/pl.mp3"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err=%v", err)
	}
	if err := store.Delete(ctx, "sentence-trainer/7/12/pl.mp3"); err != nil {
		t.Fatalf("deleting a missing file must be a no-op, got %v", err)
	}
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	store := NewLocal(t.TempDir(), "")
	if _, err := store.Upload(context.Background(), []byte("x"), "../../etc/passwd", ""); !apperr.IsProcessing(err) {
		t.Fatalf("expected processing error for escaping key, got %v", err)
	}
}

type fakeS3 struct {
	put    *s3.PutObjectInput
	del    *s3.DeleteObjectInput
	putErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.del = in
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Upload(t *testing.T) {
	client := &fakeS3{}
	store, err := NewS3(client, "audio", "eu-central-1", "")
	if err != nil {
		t.Fatalf("NewS3 returned error: %v", err)
	}

	url, err := store.Upload(context.Background(), []byte("mp3"), "/sentence-trainer/shared/3/de.mp3", "")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if url != "https://audio.s3.eu-central-1.amazonaws.com/sentence-trainer/shared/3/de.mp3" {
		t.Fatalf("unexpected URL %q", url)
	}
	if aws.ToString(client.put.Key) != "sentence-trainer/shared/3/de.mp3" {
		t.Fatalf("unexpected key %q", aws.ToString(client.put.Key))
	}
	if client.put.ACL != types.ObjectCannedACLPublicRead || aws.ToString(client.put.ContentType) != AudioContentType {
		t.Fatalf("unexpected ACL/content type: %v %q", client.put.ACL, aws.ToString(client.put.ContentType))
	}

	if err := store.Delete(context.Background(), "sentence-trainer/shared/3/de.mp3"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if aws.ToString(client.del.Bucket) != "audio" {
		t.Fatalf("unexpected delete bucket %q", aws.ToString(client.del.Bucket))
	}

	client.putErr = errors.New("access denied")
	if _, err := store.Upload(context.Background(), []byte("mp3"), "k.mp3", ""); !apperr.IsProcessing(err) {
		t.Fatalf("expected processing error, got %v", err)
	}
}

func TestS3URLVariants(t *testing.T) {
	withBase, _ := NewS3(&fakeS3{}, "audio", "eu-central-1", "https://cdn.example.com/")
	if got := withBase.URL("a/b.mp3"); got != "https://cdn.example.com/a/b.mp3" {
		t.Fatalf("unexpected base URL variant %q", got)
	}
	global, _ := NewS3(&fakeS3{}, "audio", "", "")
	if got := global.URL("a/b.mp3"); got != "https://audio.s3.amazonaws.com/a/b.mp3" {
		t.Fatalf("unexpected global URL variant %q", got)
	}
	if _, err := NewS3(&fakeS3{}, " ", "", ""); !apperr.IsProcessing(err) {
		t.Fatalf("expected processing error without bucket, got %v", err)
	}
}

package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
)

type fakePutter struct {
	puts []string
	ct   []string
	err  error
}

func (f *fakePutter) FPutObject(ctx context.Context, bucket, key, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.puts = append(f.puts, bucket+"/"+key)
	f.ct = append(f.ct, opts.ContentType)
	return minio.UploadInfo{Bucket: bucket, Key: key}, nil
}

func TestPublish_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "bracket.glb")
	os.WriteFile(present, []byte("glTF"), 0644)

	fake := &fakePutter{}
	p := newPublisher(fake, "models", "cad/step", nil)

	keys, err := p.Publish(context.Background(), []string{present, filepath.Join(dir, "missing.glb")})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "cad/step/bracket.glb" {
		t.Errorf("Unexpected keys %v", keys)
	}
	if len(fake.puts) != 1 || fake.puts[0] != "models/cad/step/bracket.glb" {
		t.Errorf("Unexpected uploads %v", fake.puts)
	}
	if fake.ct[0] != "model/gltf-binary" {
		t.Errorf("Expected GLB content type, got %s", fake.ct[0])
	}
}

func TestPublish_UploadError(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "a.glb")
	os.WriteFile(present, []byte("glTF"), 0644)

	p := newPublisher(&fakePutter{err: errors.New("denied")}, "models", "", nil)

	if _, err := p.Publish(context.Background(), []string{present}); err == nil {
		t.Error("Expected upload error, got nil")
	}
}

func TestObjectKey_NoPrefix(t *testing.T) {
	p := newPublisher(&fakePutter{}, "models", "", nil)
	if got := p.ObjectKey("/out/a.glb"); got != "a.glb" {
		t.Errorf("ObjectKey() = %s, want a.glb", got)
	}
}

package replica_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mwantia/mediarepo/data"
	mediaerrors "github.com/mwantia/mediarepo/data/errors"
	"github.com/mwantia/mediarepo/replica"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name string
		item *data.Item
		want string
	}{
		{"StoredPath", &data.Item{ID: 7, Path: "2024/3/7.png"}, "art/2024/3/7.png"},
		{"NoPath", &data.Item{ID: 7}, "art/7"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(tst *testing.T) {
			if got := replica.ObjectKey("art", tc.item); got != tc.want {
				tst.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

// TestNewS3Replica verifies construction does not contact the endpoint.
func TestNewS3Replica(t *testing.T) {
	r, err := replica.NewS3Replica(replica.Options{
		Endpoint:  "localhost:9000",
		Bucket:    "media",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	if err != nil {
		t.Fatalf("NewS3Replica failed: %v", err)
	}
	if r.Name() != "s3" {
		t.Errorf("Expected name 's3', got %q", r.Name())
	}
}

// s3Stub answers the path-style bucket and object requests the replica issues.
type s3Stub struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]http.Header
	created []string
}

func newS3Stub(buckets ...string) *s3Stub {
	stub := &s3Stub{
		buckets: make(map[string]bool),
		objects: make(map[string]http.Header),
	}
	for _, bucket := range buckets {
		stub.buckets[bucket] = true
	}
	return stub
}

func (s *s3Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	io.Copy(io.Discard, r.Body)

	if key == "" {
		switch r.Method {
		case http.MethodHead, http.MethodGet:
			if !s.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		case http.MethodPut:
			s.buckets[bucket] = true
			s.created = append(s.created, bucket)
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	object := bucket + "/" + key
	switch r.Method {
	case http.MethodPut:
		s.objects[object] = r.Header.Clone()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := s.objects[object]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(s.objects, object)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *s3Stub) header(object string) (http.Header, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.objects[object]
	return h, ok
}

func newStubReplica(t *testing.T, stub *s3Stub, create bool) *replica.S3Replica {
	t.Helper()

	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	r, err := replica.NewS3Replica(replica.Options{
		Endpoint:     srv.Listener.Addr().String(),
		Bucket:       "media",
		Region:       "us-east-1",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		CreateBucket: create,
	})
	if err != nil {
		t.Fatalf("NewS3Replica failed: %v", err)
	}
	return r
}

func TestS3Replica_Open(t *testing.T) {
	t.Run("ExistingBucket", func(tst *testing.T) {
		stub := newS3Stub("media")
		r := newStubReplica(tst, stub, false)

		if err := r.Open(tst.Context()); err != nil {
			tst.Fatalf("Open failed: %v", err)
		}
		if len(stub.created) != 0 {
			tst.Errorf("Expected no bucket to be created, got %v", stub.created)
		}
	})

	t.Run("MissingBucket", func(tst *testing.T) {
		r := newStubReplica(tst, newS3Stub(), false)

		if err := r.Open(tst.Context()); !errors.Is(err, mediaerrors.ErrInvalid) {
			tst.Errorf("Expected ErrInvalid for a missing bucket, got %v", err)
		}
	})

	t.Run("CreateBucket", func(tst *testing.T) {
		stub := newS3Stub()
		r := newStubReplica(tst, stub, true)

		if err := r.Open(tst.Context()); err != nil {
			tst.Fatalf("Open failed: %v", err)
		}
		if len(stub.created) != 1 || stub.created[0] != "media" {
			tst.Errorf("Expected bucket 'media' to be created, got %v", stub.created)
		}
	})
}

func TestS3Replica_Objects(t *testing.T) {
	stub := newS3Stub("media")
	r := newStubReplica(t, stub, false)
	if err := r.Open(t.Context()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	item := &data.Item{ID: 7, Name: "sunset.png", ContentType: data.ContentTypePNG, Path: "2024/3/7.png"}
	object := "media/art/2024/3/7.png"

	exists, err := r.Exists(t.Context(), "art", item)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected a missing key to report false")
	}

	if err := r.Put(t.Context(), "art", item, []byte("png")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	h, ok := stub.header(object)
	if !ok {
		t.Fatalf("Expected object %q to be stored", object)
	}
	if got := h.Get("X-Amz-Meta-Item-Id"); got != "7" {
		t.Errorf("Expected item-id metadata '7', got %q", got)
	}
	if got := h.Get("X-Amz-Meta-Name"); got != "sunset.png" {
		t.Errorf("Expected name metadata 'sunset.png', got %q", got)
	}
	if got := h.Get("Content-Type"); got != "image/png" {
		t.Errorf("Expected content type 'image/png', got %q", got)
	}

	exists, err = r.Exists(t.Context(), "art", item)
	if err != nil || !exists {
		t.Errorf("Expected the stored key to exist, got %v (%v)", exists, err)
	}

	if err := r.Remove(t.Context(), "art", item); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := stub.header(object); ok {
		t.Errorf("Expected object %q to be removed", object)
	}
}

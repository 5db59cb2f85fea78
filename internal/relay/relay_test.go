package relay

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sgarlapa/expense-ledger-bot/internal/slack"
)

type fakeFetcher struct {
	content     []byte
	contentType string
	err         error
	calls       int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, string, error) {
	f.calls++
	return f.content, f.contentType, f.err
}

type fakeStore struct {
	uploadedName string
	uploadedType string
	uploadedData []byte
	uploadErr    error
	linkErr      error
}

func (s *fakeStore) Upload(_ context.Context, name, contentType string, content []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploadedName = name
	s.uploadedType = contentType
	s.uploadedData = content
	return "object-1", nil
}

func (s *fakeStore) PublicLink(_ context.Context, objectID string) (string, error) {
	if s.linkErr != nil {
		return "", s.linkErr
	}
	return "https://store.example.com/" + objectID, nil
}

func newTestRelay(fetcher *fakeFetcher, store *fakeStore) *Relay {
	r := New(fetcher, store, zap.NewNop())
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r
}

func TestRelay_Relay(t *testing.T) {
	att := slack.Attachment{
		DownloadURL: "https://files.example.com/download",
		Name:        "receipt.pdf",
	}

	t.Run("happy path returns the public link", func(t *testing.T) {
		fetcher := &fakeFetcher{content: []byte("bytes"), contentType: "application/pdf"}
		store := &fakeStore{}

		link := newTestRelay(fetcher, store).Relay(context.Background(), att)

		assert.Equal(t, "https://store.example.com/object-1", link)
		assert.Equal(t, "application/pdf", store.uploadedType)
		assert.Equal(t, []byte("bytes"), store.uploadedData)
	})

	t.Run("object name carries a timestamp discriminator", func(t *testing.T) {
		fetcher := &fakeFetcher{content: []byte("bytes"), contentType: "application/pdf"}
		store := &fakeStore{}

		newTestRelay(fetcher, store).Relay(context.Background(), att)

		want := fmt.Sprintf("%d_receipt.pdf", time.Unix(1700000000, 0).UnixNano())
		assert.Equal(t, want, store.uploadedName)
	})

	t.Run("content type sniffed when the transport omits it", func(t *testing.T) {
		png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
		fetcher := &fakeFetcher{content: png}
		store := &fakeStore{}

		newTestRelay(fetcher, store).Relay(context.Background(), att)

		assert.Equal(t, "image/png", store.uploadedType)
	})

	t.Run("generic transport type is replaced by sniffing", func(t *testing.T) {
		png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
		fetcher := &fakeFetcher{content: png, contentType: "application/octet-stream"}
		store := &fakeStore{}

		newTestRelay(fetcher, store).Relay(context.Background(), att)

		assert.Equal(t, "image/png", store.uploadedType)
	})

	t.Run("fetch failure degrades to empty reference", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("download failed with status 403")}
		store := &fakeStore{}

		link := newTestRelay(fetcher, store).Relay(context.Background(), att)

		assert.Empty(t, link)
		assert.Empty(t, store.uploadedName, "nothing should be uploaded after a failed fetch")
	})

	t.Run("upload failure degrades to empty reference", func(t *testing.T) {
		fetcher := &fakeFetcher{content: []byte("bytes"), contentType: "text/plain"}
		store := &fakeStore{uploadErr: errors.New("quota exceeded")}

		link := newTestRelay(fetcher, store).Relay(context.Background(), att)
		assert.Empty(t, link)
	})

	t.Run("link failure degrades to empty reference", func(t *testing.T) {
		fetcher := &fakeFetcher{content: []byte("bytes"), contentType: "text/plain"}
		store := &fakeStore{linkErr: errors.New("permission denied")}

		link := newTestRelay(fetcher, store).Relay(context.Background(), att)
		assert.Empty(t, link)
	})

	t.Run("attachment without url is skipped without fetching", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		store := &fakeStore{}

		link := newTestRelay(fetcher, store).Relay(context.Background(), slack.Attachment{Name: "ghost.png"})

		assert.Empty(t, link)
		assert.Zero(t, fetcher.calls)
	})
}

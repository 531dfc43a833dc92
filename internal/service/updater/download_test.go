package updater

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/paper-updater/internal/config"
)

// fakeAPI is a configurable stand-in for the Paper download API.
type fakeAPI struct {
	versions []string
	builds   map[string][]string
	payload  []byte
	// truncateAt, when positive, declares the full payload length but stops
	// writing after that many bytes to simulate a dropped connection.
	truncateAt int
}

func (f *fakeAPI) newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"versions": %s}`, toJSONList(f.versions))
	})
	mux.HandleFunc("GET /{version}", func(w http.ResponseWriter, r *http.Request) {
		builds, ok := f.builds[r.PathValue("version")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_, _ = fmt.Fprintf(w, `{"builds": {"all": %s}}`, toJSONList(builds))
	})
	mux.HandleFunc("GET /{version}/{build}/download", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(f.payload)))

		if f.truncateAt > 0 {
			_, _ = w.Write(f.payload[:f.truncateAt])
			return
		}

		_, _ = w.Write(f.payload)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func toJSONList(values []string) string {
	var out bytes.Buffer

	out.WriteByte('[')

	for i, value := range values {
		if i > 0 {
			out.WriteByte(',')
		}

		out.WriteByte('"')
		out.WriteString(value)
		out.WriteByte('"')
	}

	out.WriteByte(']')

	return out.String()
}

// newTestService wires a Service against the fake API, quiet and non-interactive.
func newTestService(t *testing.T, api *fakeAPI, installedVersion, installedBuild string) *Service {
	t.Helper()

	server := api.newServer(t)
	cfg := &config.Config{APIBaseURL: server.URL}

	return NewService(cfg, filepath.Join(t.TempDir(), "paper.jar"),
		installedVersion, installedBuild, false, true, bytes.NewReader(nil), io.Discard)
}

func randomPayload(t *testing.T, n int) []byte {
	t.Helper()

	payload := make([]byte, n)
	_, err := rand.New(rand.NewSource(int64(n))).Read(payload)
	require.NoError(t, err)

	return payload
}

// TestDownloadRoundTrip reassembles chunked downloads byte-identically,
// including lengths that are not a multiple of the chunk size and zero.
func TestDownloadRoundTrip(t *testing.T) {
	t.Parallel()

	lengths := []int{
		0,
		1,
		DownloadChunkSize,
		DownloadChunkSize*3 + 100,
		DownloadChunkSize * 2,
	}

	for _, length := range lengths {
		t.Run(strconv.Itoa(length), func(t *testing.T) {
			t.Parallel()

			payload := randomPayload(t, length)
			api := &fakeAPI{payload: payload}
			service := newTestService(t, api, "1.16.5", "200")

			dest := filepath.Join(t.TempDir(), downloadFilename)
			require.NoError(t, service.download(context.Background(), dest, "1.16.5", "205"))

			written, err := os.ReadFile(dest)
			require.NoError(t, err)
			require.Equal(t, payload, written)
		})
	}
}

// TestDownloadTruncatedStream fails when the body ends before the declared
// length; the partial file is left behind for the temp dir cleanup.
func TestDownloadTruncatedStream(t *testing.T) {
	t.Parallel()

	payload := randomPayload(t, DownloadChunkSize*4)
	api := &fakeAPI{payload: payload, truncateAt: DownloadChunkSize}
	service := newTestService(t, api, "1.16.5", "200")

	dest := filepath.Join(t.TempDir(), downloadFilename)
	err := service.download(context.Background(), dest, "1.16.5", "205")
	require.Error(t, err)

	// The partial file exists and holds at most what was sent.
	info, statErr := os.Stat(dest)
	require.NoError(t, statErr)
	require.LessOrEqual(t, info.Size(), int64(DownloadChunkSize*2))
}

package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestEncoding(t *testing.T) {
	tests := []struct {
		mime     string
		encoding string
		rate     int64
	}{
		{"audio/webm", "WEBM_OPUS", 48000},
		{"audio/webm;codecs=opus", "WEBM_OPUS", 48000},
		{"audio/ogg; codecs=opus", "OGG_OPUS", 16000},
		{"audio/mpeg", "MP3", 16000},
		{"audio/mp4", "MP3", 16000},
		{"audio/M4A", "MP3", 16000},
		{"audio/x-wav", "LINEAR16", 16000},
		{"audio/flac", "FLAC", 16000},
		{"", "WEBM_OPUS", 48000},
		{"video/quicktime", "WEBM_OPUS", 48000},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			enc, rate := Encoding(tt.mime)
			assert.Equal(t, tt.encoding, enc)
			assert.Equal(t, tt.rate, rate)
		})
	}
}

func TestConfig(t *testing.T) {
	cfg := Config("audio/wav", "")
	assert.Equal(t, "en-US", cfg.LanguageCode)
	assert.Equal(t, []string{"en-GB", "en-AU"}, cfg.AlternativeLanguageCodes)
	assert.Equal(t, "latest_short", cfg.Model)
	assert.True(t, cfg.UseEnhanced)
	require.Len(t, cfg.SpeechContexts, 1)
	assert.Equal(t, float64(PhraseBoost), cfg.SpeechContexts[0].Boost)
	assert.Contains(t, cfg.SpeechContexts[0].Phrases, "master bedroom")

	fr := Config("audio/webm", "fr-FR")
	assert.Empty(t, fr.AlternativeLanguageCodes)
}

func TestCredentials_Options(t *testing.T) {
	_, err := Credentials{}.Options()
	assert.ErrorIs(t, err, ErrNotConfigured)

	opts, err := Credentials{APIKey: "k", ServiceAccountJSON: "{}"}.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	opts, err = Credentials{ServiceAccountJSON: "{}"}.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

func newTestTranscriber(t *testing.T, body string, seen *map[string]any) *Transcriber {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/speech:recognize", r.URL.Path)
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	tr, err := NewTranscriber(context.Background(), Credentials{APIKey: "test"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return tr
}

func TestTranscriber_Transcribe(t *testing.T) {
	var seen map[string]any
	tr := newTestTranscriber(t, `{"results":[
		{"alternatives":[{"transcript":"blue sofa","confidence":0.9}]},
		{"alternatives":[{"transcript":" living room ","confidence":0.7}]}
	]}`, &seen)

	got, err := tr.Transcribe(context.Background(), "AAAA", "audio/ogg", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "blue sofa living room", got.Text)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)

	cfg := seen["config"].(map[string]any)
	assert.Equal(t, "OGG_OPUS", cfg["encoding"])
	assert.Equal(t, "AAAA", seen["audio"].(map[string]any)["content"])
}

func TestTranscriber_DefaultConfidenceAndEmpty(t *testing.T) {
	tr := newTestTranscriber(t, `{"results":[{"alternatives":[{"transcript":"lamp"}]}]}`, nil)
	got, err := tr.Transcribe(context.Background(), "AAAA", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0.8, got.Confidence)

	empty := newTestTranscriber(t, `{}`, nil)
	_, err = empty.Transcribe(context.Background(), "AAAA", "", "")
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestTranscriber_Clip(t *testing.T) {
	tr := newTestTranscriber(t, `{"results":[{"alternatives":[{"transcript":"two boxes"}]}]}`, nil)
	text, err := tr.Clip("AAAA", "audio/webm", "en-GB").Recognize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "two boxes", text)
}

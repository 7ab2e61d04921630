package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscriptionService_MockFallback(t *testing.T) {
	// No client configured; the service degrades to the canned transcript.
	service := &TranscriptionService{client: nil}

	t.Run("transcribes valid audio", func(t *testing.T) {
		req := TranscribeRequest{
			Audio:        base64.StdEncoding.EncodeToString([]byte("fake audio bytes")),
			Encoding:     "LINEAR16",
			SampleRate:   16000,
			LanguageCode: "en-US",
		}

		transcript, confidence, err := service.Transcribe(context.Background(), req)
		assert.NoError(t, err)
		assert.NotEmpty(t, transcript)
		assert.Greater(t, confidence, float32(0))
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		_, _, err := service.Transcribe(context.Background(), TranscribeRequest{Audio: "not-base64!!!"})
		assert.Error(t, err)
	})

	t.Run("rejects empty audio", func(t *testing.T) {
		_, _, err := service.Transcribe(context.Background(), TranscribeRequest{Audio: ""})
		assert.Error(t, err)
	})
}

func TestTranscriptionService_TranscribeCall(t *testing.T) {
	service := &TranscriptionService{client: nil}

	t.Run("successful transcription", func(t *testing.T) {
		body, _ := json.Marshal(TranscribeRequest{
			Audio: base64.StdEncoding.EncodeToString([]byte("fake audio bytes")),
		})
		r := httptest.NewRequest("POST", "/api/calls/transcribe", bytes.NewBuffer(body))
		r = r.WithContext(context.WithValue(r.Context(), "userID", 1))
		w := httptest.NewRecorder()

		service.TranscribeCall(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var response TranscribeResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.NotEmpty(t, response.TranscriptID)
		assert.NotEmpty(t, response.Transcript)
	})

	t.Run("missing audio", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/calls/transcribe", bytes.NewBuffer([]byte(`{}`)))
		r = r.WithContext(context.WithValue(r.Context(), "userID", 1))
		w := httptest.NewRecorder()

		service.TranscribeCall(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/calls/transcribe", bytes.NewBuffer([]byte(`{}`)))
		w := httptest.NewRecorder()

		service.TranscribeCall(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestParseEncoding(t *testing.T) {
	for _, name := range []string{"LINEAR16", "FLAC", "MULAW", "OGG_OPUS", "WEBM_OPUS", "linear16"} {
		_, err := parseEncoding(name)
		assert.NoError(t, err, name)
	}

	_, err := parseEncoding("MP3")
	assert.Error(t, err)
}

package tts

import (
	"context"
	"errors"
	"log"
)

// Speaker is the synthesis half of the service; GeminiSpeaker is the real
// implementation.
type Speaker interface {
	Voice() string
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Service answers speech requests from the cache when it can and falls back
// to live synthesis, writing the result back for next time. A nil cache
// disables caching without changing behavior.
type Service struct {
	speaker Speaker
	cache   *Cache
}

func NewService(speaker Speaker, cache *Cache) *Service {
	return &Service{speaker: speaker, cache: cache}
}

// Speak returns WAV audio for text in the given language.
func (s *Service) Speak(ctx context.Context, text, lang string) ([]byte, error) {
	key := CacheKey(s.speaker.Voice(), lang, text)

	if s.cache != nil {
		if wav, err := s.cache.Get(ctx, key); err == nil {
			return wav, nil
		} else if !errors.Is(err, ErrCacheMiss) {
			log.Printf("tts cache read failed, synthesizing: %v", err)
		}
	}

	wav, err := s.speaker.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, key, wav); err != nil {
			log.Printf("tts cache write failed: %v", err)
		}
	}
	return wav, nil
}

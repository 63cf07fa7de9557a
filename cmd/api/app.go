package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"deary/internal/config"
	"deary/internal/diary"
	"deary/internal/dialogue"
	"deary/internal/kvstore"
	"deary/internal/llm"
	"deary/internal/tts"
)

type app struct {
	server *server
	kv     *kvstore.Store
	client llm.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Dependencies
	var kv *kvstore.Store
	if cfg.PostgresDSN != "" {
		kv, err = kvstore.NewPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
	} else {
		kv = kvstore.New(cfg.DataPath)
	}

	// A missing API key degrades to pool questions and heuristics instead
	// of refusing to start; only diary synthesis hard-fails without it.
	var client llm.Client
	gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiModel)
	switch {
	case err == nil:
		client = gemini
	case errors.Is(err, llm.ErrUnavailable):
		log.Printf("LLM gateway unavailable, running on fallbacks: %v", err)
	default:
		return nil, fmt.Errorf("failed to init llm client: %w", err)
	}

	engineCfg := dialogue.DefaultConfig()
	if cfg.Dialogue.MinTurns > 0 {
		engineCfg.MinTurns = cfg.Dialogue.MinTurns
	}
	if cfg.Dialogue.MaxFollowups > 0 {
		engineCfg.MaxFollowups = cfg.Dialogue.MaxFollowups
	}
	if cfg.Dialogue.ShortAnswerLen > 0 {
		engineCfg.ShortAnswerLen = cfg.Dialogue.ShortAnswerLen
	}
	if cfg.Dialogue.FallbackFollowupLen > 0 {
		engineCfg.FallbackFollowupLen = cfg.Dialogue.FallbackFollowupLen
	}
	engine := dialogue.NewEngine(client, engineCfg)

	speech := buildSpeech(cfg, client)

	h := &handlers{
		engine:   engine,
		diaries:  diary.NewStore(kv),
		profiles: diary.NewProfileStore(kv),
		speech:   speech,
		client:   client,
	}

	// Routing & Server
	srv := newServer(cfg.Port, newMux(h))

	return &app{server: srv, kv: kv, client: client}, nil
}

func buildSpeech(cfg *config.Config, client llm.Client) *tts.Service {
	if client == nil {
		return nil
	}
	speaker, err := tts.NewGeminiSpeaker(context.Background(), cfg.TTS.Model, cfg.TTS.Voice)
	if err != nil {
		log.Printf("speech synthesis disabled: %v", err)
		return nil
	}

	var cache *tts.Cache
	if cfg.TTS.CacheEnabled {
		cache, err = tts.NewCache(tts.CacheConfig{
			Endpoint:  cfg.TTS.Endpoint,
			Region:    cfg.TTS.Region,
			AccessKey: cfg.TTS.AccessKey,
			SecretKey: cfg.TTS.SecretKey,
			Bucket:    cfg.TTS.Bucket,
			UseSSL:    cfg.TTS.UseSSL,
		})
		if err != nil {
			log.Printf("speech cache disabled: %v", err)
			cache = nil
		}
	}
	return tts.NewService(speaker, cache)
}

func (a *app) Start() error {
	return a.server.Start()
}

func (a *app) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.client != nil {
		if cerr := a.client.Close(); cerr != nil {
			log.Printf("llm client close: %v", cerr)
		}
	}
	if kerr := a.kv.Close(); kerr != nil && err == nil {
		err = kerr
	}
	return err
}

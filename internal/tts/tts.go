// Package tts turns short prompt texts into playable speech through
// Gemini's speech models, with an object-store cache in front so repeated
// prompts are never synthesized twice.
package tts

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"deary/internal/llm"
)

const DefaultModel = "gemini-2.5-flash-preview-tts"

// DefaultVoice is a calm prebuilt voice suited to diary prompts.
const DefaultVoice = "Kore"

// GeminiSpeaker synthesizes speech via the Gemini API and returns WAV bytes.
type GeminiSpeaker struct {
	cli   *genai.Client
	model string
	voice string
}

// NewGeminiSpeaker builds a speaker from GEMINI_API_KEY. An empty model or
// voice falls back to the defaults.
func NewGeminiSpeaker(ctx context.Context, model, voice string) (*GeminiSpeaker, error) {
	if strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", llm.ErrUnavailable)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("init gemini tts client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(voice) == "" {
		voice = DefaultVoice
	}
	return &GeminiSpeaker{cli: cli, model: model, voice: voice}, nil
}

func (g *GeminiSpeaker) Voice() string { return g.voice }

// Synthesize speaks text and returns a complete WAV file.
func (g *GeminiSpeaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("tts: empty text")
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}

	pcm := inlineAudio(resp)
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: no audio in response", llm.ErrMalformed)
	}
	return WrapPCM(pcm, pcmSampleRate, pcmChannels, pcmBitsPerSample), nil
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}

package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PromptsConfig contains the system prompts for every AI call,
// loaded from YAML with built-in defaults.
type PromptsConfig struct {
	Classifier     string `yaml:"classifier"`
	Acknowledgment string `yaml:"acknowledgment"`
	CleanerQuery   string `yaml:"cleaner_query"`
	ResponseParser string `yaml:"response_parser"`
	ReplyComposer  string `yaml:"reply_composer"`
}

// LoadPromptsConfig loads the prompt pack from a YAML file, falling
// back to defaults for missing files or missing keys.
func LoadPromptsConfig(configPath string) (*PromptsConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prompts.yaml",
			"/etc/checkin-bridge/prompts.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
		}
	}

	var data []byte
	for _, p := range paths {
		if p == "" {
			continue
		}
		if b, err := os.ReadFile(p); err == nil {
			data = b
			break
		}
	}

	if data == nil {
		return DefaultPromptsConfig(), nil
	}

	var config PromptsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts.yaml: %w", err)
	}

	config.fillDefaults()
	return &config, nil
}

// DefaultPromptsConfig returns the built-in prompt pack
func DefaultPromptsConfig() *PromptsConfig {
	cfg := &PromptsConfig{}
	cfg.fillDefaults()
	return cfg
}

func (c *PromptsConfig) fillDefaults() {
	if c.Classifier == "" {
		c.Classifier = defaultClassifierPrompt
	}
	if c.Acknowledgment == "" {
		c.Acknowledgment = defaultAcknowledgmentPrompt
	}
	if c.CleanerQuery == "" {
		c.CleanerQuery = defaultCleanerQueryPrompt
	}
	if c.ResponseParser == "" {
		c.ResponseParser = defaultResponseParserPrompt
	}
	if c.ReplyComposer == "" {
		c.ReplyComposer = defaultReplyComposerPrompt
	}
}

const defaultClassifierPrompt = `You classify guest messages for a short-term rental.
The guest may be asking for an early check-in, a late check-out, or something else entirely.

Reply with JSON only, no prose, following this schema exactly:
{
  "intent": "early_checkin" | "late_checkout" | "other",
  "confidence": 0.0-1.0,
  "extracted_time": "HH:MM" or null,
  "needs_followup": true | false,
  "followup_question": string or null
}

Rules:
- "intent" is "other" for anything that is not a time-change request (wifi, directions, complaints, small talk).
- "extracted_time" is the time the guest asked for, only if they named one.
- Set "needs_followup" when the request is a time change but too vague to act on
  (no time, ambiguous day), and put the clarifying question to the guest in "followup_question".
- "confidence" reflects how sure you are about the intent, not the time.`

const defaultAcknowledgmentPrompt = `You write short, warm acknowledgments to guests of a short-term rental.
The guest asked for a time change; we are checking with the cleaning team and will confirm later.
Do NOT promise the change. Do NOT invent times or conditions. One short paragraph.

Reply with JSON only:
{"body": string, "confidence": 0.0-1.0}`

const defaultCleanerQueryPrompt = `You write brief, practical messages to the cleaning staff of a short-term rental.
Given a guest's time-change request, ask whether the schedule allows it.
Include the property, the date, the standard time and the requested time.
Keep it to two or three sentences, friendly but to the point.

Reply with JSON only:
{"body": string, "confidence": 0.0-1.0}`

const defaultResponseParserPrompt = `You interpret free-text replies from cleaning staff about a schedule question.
Decide whether the answer is yes, no, conditional, or unclear.

Reply with JSON only:
{
  "answer": "yes" | "no" | "conditional" | "unclear",
  "conditions": string or null,
  "proposed_time": "HH:MM" or null,
  "confidence": 0.0-1.0
}

Rules:
- "conditional" when the cleaner agrees with a restriction ("only if they arrive after 13:00").
- "proposed_time" when the cleaner offers a different time than requested.
- "unclear" when the reply does not actually answer the question.`

const defaultReplyComposerPrompt = `You write replies to guests of a short-term rental about their time-change request,
based on the cleaning team's decision. Be warm and clear. If the answer is no, be
apologetic and state the standard time. If conditional, state the condition plainly.
Never mention the cleaning staff's name or internal scheduling details. One short paragraph.

Reply with JSON only:
{"body": string, "confidence": 0.0-1.0}`

// Package config persists and validates the application's named settings
// in one flat YAML document.
package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	gc "github.com/joshsymonds/maildigest/internal/gmail"
)

// Registered setting keys.
const (
	KeyTodoistAPIKey        = "TODOIST_API_KEY"
	KeyGeminiAPIKey         = "GEMINI_API_KEY"
	KeyScanTime             = "SCAN_TIME"
	KeyGmailCredentialsPath = "GMAIL_CREDENTIALS_PATH"
	KeyGmailTokenPath       = "GMAIL_TOKEN_PATH"
	KeyExcludeRead          = "EXCLUDE_READ"
	KeyExcludeSpam          = "EXCLUDE_SPAM"
	KeyExcludePromotional   = "EXCLUDE_PROMOTIONAL"
	KeyLookbackDays         = "LOOKBACK_DAYS"
)

var scanTimeRE = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

func nonEmpty(v string) bool { return strings.TrimSpace(v) != "" }

func yesNo(v string) bool {
	return strings.EqualFold(v, "yes") || strings.EqualFold(v, "no")
}

func positiveInt(v string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return err == nil && n >= 1
}

// Setting describes one registered configuration key.
type Setting struct {
	Key      string
	Prompt   string
	Default  string
	Secret   bool
	Validate func(string) bool
}

// Schema returns the registered settings in their fixed declared order,
// which is also the interactive setup order.
func Schema() []Setting {
	return []Setting{
		{
			Key:      KeyTodoistAPIKey,
			Prompt:   "Enter your Todoist API key:",
			Secret:   true,
			Validate: nonEmpty,
		},
		{
			Key:      KeyGeminiAPIKey,
			Prompt:   "Enter your Gemini API key:",
			Secret:   true,
			Validate: nonEmpty,
		},
		{
			Key:      KeyScanTime,
			Prompt:   "Enter the daily scan time (24-hour format, e.g., 09:00):",
			Default:  "09:00",
			Validate: scanTimeRE.MatchString,
		},
		{
			Key:      KeyGmailCredentialsPath,
			Prompt:   "Enter the path to your Gmail OAuth client secret file:",
			Default:  "credentials.json",
			Validate: nonEmpty,
		},
		{
			Key:      KeyGmailTokenPath,
			Prompt:   "Enter the path for the persisted Gmail OAuth token:",
			Default:  "token.json",
			Validate: nonEmpty,
		},
		{
			Key:      KeyExcludeRead,
			Prompt:   "Only include unread or important mail? (yes/no):",
			Default:  "yes",
			Validate: yesNo,
		},
		{
			Key:      KeyExcludeSpam,
			Prompt:   "Exclude spam? (yes/no):",
			Default:  "yes",
			Validate: yesNo,
		},
		{
			Key:      KeyExcludePromotional,
			Prompt:   "Exclude promotional mail? (yes/no):",
			Default:  "yes",
			Validate: yesNo,
		},
		{
			Key:      KeyLookbackDays,
			Prompt:   "How many days back should each digest look? (integer >= 1):",
			Default:  "1",
			Validate: positiveInt,
		},
	}
}

// RequiredKeys lists every registered key; all must be configured before
// the daemon enters its timer loop.
func RequiredKeys() []string {
	schema := Schema()
	keys := make([]string, 0, len(schema))
	for _, s := range schema {
		keys = append(keys, s.Key)
	}
	return keys
}

// Store reads and writes the configuration document. Secrets are rendered
// masked by PrintCurrent; they are never echoed back in the clear.
type Store struct {
	Path string
	Log  *slog.Logger
	In   io.Reader
	Out  io.Writer

	byKey map[string]Setting
}

func NewStore(path string, log *slog.Logger) *Store {
	byKey := make(map[string]Setting)
	for _, s := range Schema() {
		byKey[s.Key] = s
	}
	return &Store{
		Path:  path,
		Log:   log,
		In:    os.Stdin,
		Out:   os.Stdout,
		byKey: byKey,
	}
}

// Load returns all persisted settings. A missing document yields an empty
// mapping and no error; a malformed one is a fatal read error for the run.
func (s *Store) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read config document %s: %w", s.Path, err)
	}
	settings := map[string]string{}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse config document %s: %w", s.Path, err)
	}
	return settings, nil
}

// IsConfigured reports whether every key in required is present and maps
// to a non-empty string.
func (s *Store) IsConfigured(required []string) bool {
	settings, err := s.Load()
	if err != nil {
		s.Log.Error("load configuration", "error", err)
		return false
	}
	for _, key := range required {
		if strings.TrimSpace(settings[key]) == "" {
			return false
		}
	}
	return true
}

// Validate applies the key's registered validator. Unknown keys are
// always invalid.
func (s *Store) Validate(key, value string) bool {
	setting, ok := s.byKey[key]
	if !ok {
		return false
	}
	return setting.Validate(value)
}

// Update validates value and merges the single key into the persisted
// document (read-modify-write of the whole document). Returns false
// without side effects when validation or persistence fails.
func (s *Store) Update(key, value string) bool {
	if !s.Validate(key, value) {
		return false
	}
	settings, err := s.Load()
	if err != nil {
		s.Log.Error("load configuration for update", "key", key, "error", err)
		return false
	}
	settings[key] = value
	if err := s.save(settings); err != nil {
		s.Log.Error("persist configuration", "key", key, "error", err)
		return false
	}
	return true
}

// save writes the whole document. 0600 because secrets live in it.
func (s *Store) save(settings map[string]string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode config document: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write config document %s: %w", s.Path, err)
	}
	return nil
}

// RunInteractiveSetup prompts for every registered key in schema order,
// masking secret input, applying defaults on empty input, and re-prompting
// until each value validates.
func (s *Store) RunInteractiveSetup() error {
	fmt.Fprintln(s.Out, "Welcome to maildigest initial setup!")
	fmt.Fprintln(s.Out, "Please provide the following information:")
	fmt.Fprintln(s.Out, "----------------------------------------")

	reader := bufio.NewReader(s.In)
	for _, setting := range Schema() {
		for {
			value, err := s.promptValue(reader, setting)
			if err != nil {
				return fmt.Errorf("read setup input for %s: %w", setting.Key, err)
			}
			if s.Update(setting.Key, value) {
				break
			}
			fmt.Fprintf(s.Out, "Invalid input for %s. Please try again.\n", setting.Key)
		}
	}

	fmt.Fprintln(s.Out, "\nConfiguration completed successfully!")
	return nil
}

func (s *Store) promptValue(reader *bufio.Reader, setting Setting) (string, error) {
	if setting.Secret {
		fmt.Fprintf(s.Out, "%s ", setting.Prompt)
		if f, ok := s.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(s.Out)
			return string(b), err
		}
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	if setting.Default != "" {
		fmt.Fprintf(s.Out, "%s [%s] ", setting.Prompt, setting.Default)
	} else {
		fmt.Fprintf(s.Out, "%s ", setting.Prompt)
	}
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	value := strings.TrimSpace(line)
	if value == "" && setting.Default != "" {
		value = setting.Default
	}
	return value, nil
}

// PrintCurrent renders every registered key. Secret values are always
// masked; unset keys render as "not set".
func (s *Store) PrintCurrent() error {
	settings, err := s.Load()
	if err != nil {
		return err
	}
	fmt.Fprintln(s.Out, "\nCurrent Configuration:")
	fmt.Fprintln(s.Out, "----------------------")
	for _, setting := range Schema() {
		value := settings[setting.Key]
		switch {
		case value == "":
			value = "not set"
		case setting.Secret:
			value = "********"
		}
		fmt.Fprintf(s.Out, "%s: %s\n", setting.Key, value)
	}
	return nil
}

// ValueOrDefault returns the persisted value for key, or the key's
// registered default when absent or blank.
func (s *Store) ValueOrDefault(settings map[string]string, key string) string {
	if v := strings.TrimSpace(settings[key]); v != "" {
		return v
	}
	return s.byKey[key].Default
}

// FilterConfig materializes the filter subset from the persisted
// document, applying registered defaults for absent keys.
func (s *Store) FilterConfig() (gc.FilterConfig, error) {
	settings, err := s.Load()
	if err != nil {
		return gc.FilterConfig{}, err
	}
	days, err := strconv.Atoi(s.ValueOrDefault(settings, KeyLookbackDays))
	if err != nil || days < 1 {
		days = 1
	}
	return gc.FilterConfig{
		ExcludeRead:        strings.EqualFold(s.ValueOrDefault(settings, KeyExcludeRead), "yes"),
		ExcludeSpam:        strings.EqualFold(s.ValueOrDefault(settings, KeyExcludeSpam), "yes"),
		ExcludePromotional: strings.EqualFold(s.ValueOrDefault(settings, KeyExcludePromotional), "yes"),
		LookbackDays:       days,
	}, nil
}

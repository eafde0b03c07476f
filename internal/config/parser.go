package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser evaluates settings files with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new settings parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile loads settings from path. A missing file yields DefaultSettings.
func (p *Parser) ParseFile(ctx context.Context, path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	settings, err := p.ParseString(ctx, string(data))
	if err != nil {
		return Settings{}, &apperr.Error{
			Kind:    apperr.KindUserInput,
			Message: "invalid settings file " + path,
			Err:     err,
		}
	}
	return settings, nil
}

// ParseString evaluates luaCode and extracts the global suiup table.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (Settings, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return Settings{}, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return Settings{}, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return Settings{}, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractSettings(L)
}

// ParseError represents a settings parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	detail := e.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", e.Message, detail)
}

func extractSettings(L *lua.LState) (Settings, error) {
	settings := DefaultSettings()

	global := L.GetGlobal(luaGlobalSuiup)
	if global.Type() == lua.LTNil {
		return settings, nil
	}
	table, ok := global.(*lua.LTable)
	if !ok {
		return Settings{}, &ParseError{
			Message: "invalid 'suiup' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	var fieldErr error
	str := func(field string, dst *string) {
		switch v := table.RawGetString(field).(type) {
		case lua.LString:
			*dst = string(v)
		case *lua.LNilType:
		default:
			fieldErr = errors.Join(fieldErr, fmt.Errorf("%s: expected string, got %s", field, v.Type()))
		}
	}

	str(luaFieldGitHubToken, &settings.GitHubToken)
	str(luaFieldDefaultBinDir, &settings.DefaultBinDir)
	str(luaFieldDefaultChannel, &settings.DefaultChannel)

	switch v := table.RawGetString(luaFieldHTTPTimeout).(type) {
	case lua.LNumber:
		settings.HTTPTimeout = time.Duration(float64(v) * float64(time.Second))
	case *lua.LNilType:
	default:
		fieldErr = errors.Join(fieldErr, fmt.Errorf("%s: expected number, got %s", luaFieldHTTPTimeout, v.Type()))
	}

	switch v := table.RawGetString(luaFieldRetries).(type) {
	case lua.LNumber:
		settings.Retries = int(v)
	case *lua.LNilType:
	default:
		fieldErr = errors.Join(fieldErr, fmt.Errorf("%s: expected number, got %s", luaFieldRetries, v.Type()))
	}

	switch v := table.RawGetString(luaFieldAssumeYes).(type) {
	case lua.LBool:
		settings.AssumeYes = bool(v)
	case *lua.LNilType:
	default:
		fieldErr = errors.Join(fieldErr, fmt.Errorf("%s: expected boolean, got %s", luaFieldAssumeYes, v.Type()))
	}

	if fieldErr != nil {
		return Settings{}, &ParseError{Message: "invalid settings", Detail: fieldErr.Error()}
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, &ParseError{Message: "settings validation failed", Detail: err.Error()}
	}
	return settings, nil
}

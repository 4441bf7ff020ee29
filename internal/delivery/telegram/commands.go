package telegram

import (
	"errors"
	"strconv"
	"strings"

	"github.com/NasaVasa/newsalerts/internal/usecase"
)

const HelpText = `Commands:
/help - show this help
/alerts [n] - latest alerts (default 10, max 50)
/generate [all|news|tweets] - run alert generation
/dedupe - merge alerts with the same title

Generation and cleanup are only accepted from the alerts chat.`

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

var ErrInvalidArguments = errors.New("invalid arguments")

func ParseListLimit(args string) (int, error) {
	value := strings.TrimSpace(args)
	if value == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 {
		return 0, ErrInvalidArguments
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}

func ParseSourceArg(args string) (usecase.Source, error) {
	source, err := usecase.ParseSource(strings.ToLower(strings.TrimSpace(args)))
	if err != nil {
		return "", ErrInvalidArguments
	}
	return source, nil
}

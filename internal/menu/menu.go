// Package menu implements the interactive numbered-action loop.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/i474232898/weather-cli/internal/weather"
)

// Outcome tells the loop whether to keep going after an action.
type Outcome int

const (
	Continue Outcome = iota
	Terminate
)

// Action numbers offered by the menu.
const (
	ActionLocal = iota + 1
	ActionByName
	ActionHistory
	ActionClear
	ActionExit
)

const (
	promptMenu = "Что вы хотите узнать?\n" +
		"Введите '1' чтобы узнать погоду по вашему местоположению\n" +
		"Введите '2' чтобы узнать погоду в выбранном городе\n" +
		"Введите '3' чтобы посмотреть историю\n" +
		"Введите '4' чтобы очистить историю\n" +
		"Введите '5' чтобы выйти из программы\n"
	promptCity  = "\nВведите название города\n"
	promptCount = "\nВведите число запросов, которые вы хотите увидеть\n"

	MsgFarewell       = "Попутного ветра!\n"
	MsgEnterInteger   = "Введите целое число\n"
	MsgUnknownAction  = "\nВведенное целое число не отвечает ни за какую функцию\n"
	MsgUnknownCity    = "\nВведенного города нет в базе\n"
	MsgTimeout        = "\nСервис не ответил вовремя, попробуйте позже\n"
	MsgNetwork        = "\nНе удалось связаться с сервисом погоды\n"
	MsgUnauthorized   = "\nСервис погоды отклонил ключ API\n"
	MsgNoLocation     = "\nНе удалось определить ваше местоположение\n"
	MsgInvalidCount   = "\nЧисло n должно быть положительно\n"
	MsgUnexpected     = "\nПроизошла непредвиденная ошибка\n"
	MsgHistoryEmpty   = "\nВаша история пуста\n"
	MsgZeroShown      = "\nВыведено 0 запросов, как вы и просили\n"
	MsgHistoryCleared = "История очищена\n"
	MsgNothingToClear = "\nУ вас не было истории, вам нечего очищать...\n"
	separator         = "_______________________________\n"
)

// Service is the part of weather.Service the menu drives.
type Service interface {
	Lookup(ctx context.Context, city string) (weather.Record, error)
	LookupLocal(ctx context.Context) (weather.Record, error)
	Recent(n int) ([]weather.Record, int, error)
	History() ([]weather.Record, error)
	ClearHistory() (bool, error)
}

// Controller reads actions from in and writes every user-facing message to out.
type Controller struct {
	service Service
	in      *bufio.Reader
	out     io.Writer
}

// New creates a Controller.
func New(service Service, in io.Reader, out io.Writer) *Controller {
	return &Controller{
		service: service,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// Run loops until the exit action, end of input, or ctx cancellation.
// Errors from individual actions are reported to the user and never end the loop.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.prompt(promptMenu)
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.endOfInput()
				return nil
			}
			return fmt.Errorf("read action: %w", err)
		}

		choice, err := strconv.Atoi(line)
		if err != nil {
			c.report(fmt.Errorf("%w: %q", weather.ErrInvalidInput, line))
			continue
		}

		outcome, err := c.Dispatch(ctx, choice)
		if err != nil {
			c.report(err)
			continue
		}
		if outcome == Terminate {
			return nil
		}
	}
}

// Dispatch performs a single numbered action.
func (c *Controller) Dispatch(ctx context.Context, choice int) (Outcome, error) {
	switch choice {
	case ActionLocal:
		rec, err := c.service.LookupLocal(ctx)
		if err != nil {
			return Continue, err
		}
		c.print(weather.FormatReport(rec))

	case ActionByName:
		city, err := c.prompt(promptCity)
		if errors.Is(err, io.EOF) {
			return c.endOfInput(), nil
		}
		if err != nil {
			return Continue, fmt.Errorf("read city: %w", err)
		}
		rec, err := c.service.Lookup(ctx, city)
		if err != nil {
			return Continue, err
		}
		c.print(weather.FormatReport(rec))

	case ActionHistory:
		return c.showHistory()

	case ActionClear:
		cleared, err := c.service.ClearHistory()
		if err != nil {
			return Continue, err
		}
		if cleared {
			c.print(MsgHistoryCleared)
		} else {
			c.print(MsgNothingToClear)
		}

	case ActionExit:
		c.print(MsgFarewell)
		return Terminate, nil

	default:
		c.print(MsgUnknownAction)
	}
	return Continue, nil
}

// showHistory prints the most recent lookups. End of input at the count
// prompt ends the session.
func (c *Controller) showHistory() (Outcome, error) {
	history, err := c.service.History()
	if err != nil {
		return Continue, err
	}
	if len(history) == 0 {
		c.print(MsgHistoryEmpty)
		return Continue, nil
	}

	line, err := c.prompt(promptCount)
	if errors.Is(err, io.EOF) {
		return c.endOfInput(), nil
	}
	if err != nil {
		return Continue, fmt.Errorf("read count: %w", err)
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return Continue, fmt.Errorf("%w: %q", weather.ErrInvalidInput, line)
	}

	records, total, err := c.service.Recent(n)
	if err != nil {
		return Continue, err
	}

	switch {
	case len(records) == 0:
		c.print(MsgZeroShown)
		return Continue, nil
	case len(records) == total:
		c.print(fmt.Sprintf("\nВыведены все запросы из истории: %d\n", total))
	default:
		c.print(fmt.Sprintf("\nВыведено %d запросов\n", len(records)))
	}

	c.print(separator)
	for _, r := range records {
		c.print("\n" + weather.FormatReport(r))
	}
	c.print(separator)
	return Continue, nil
}

func (c *Controller) endOfInput() Outcome {
	c.print(MsgFarewell)
	return Terminate
}

// report turns an action error into a user message. Expected failures are
// logged at warn level; anything unclassified is logged as an error.
func (c *Controller) report(err error) {
	msg := MsgUnexpected
	switch {
	case errors.Is(err, weather.ErrInvalidInput):
		msg = MsgEnterInteger
	case errors.Is(err, weather.ErrUnknownCity):
		msg = MsgUnknownCity
	case errors.Is(err, weather.ErrTimeout):
		msg = MsgTimeout
	case errors.Is(err, weather.ErrUnauthorized):
		msg = MsgUnauthorized
	case errors.Is(err, weather.ErrLocationUnavailable):
		msg = MsgNoLocation
	case errors.Is(err, weather.ErrNetwork):
		msg = MsgNetwork
	case errors.Is(err, weather.ErrInvalidCount):
		msg = MsgInvalidCount
	default:
		log.Errorf("[menu] unexpected error: %v", err)
		c.print(msg)
		return
	}
	log.Warnf("[menu] %v", err)
	c.print(msg)
}

// prompt writes text and returns the next trimmed input line. A final line
// without a newline is still returned; io.EOF comes back only on empty input.
func (c *Controller) prompt(text string) (string, error) {
	c.print(text)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Controller) print(s string) {
	if _, err := io.WriteString(c.out, s); err != nil {
		log.Debugf("[menu] write output: %v", err)
	}
}

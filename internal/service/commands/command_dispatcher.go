package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/service/batches"
	"github.com/mamadbah2/poultryops/internal/service/metrics"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrUnknownSender indicates the phone number does not belong to an active
// supervisor or admin.
var ErrUnknownSender = errors.New("unknown sender")

// ErrNotAssigned indicates the supervisor does not look after the batch.
var ErrNotAssigned = errors.New("batch not assigned to sender")

// Usage is the reply to /help and to malformed commands.
const Usage = "Supported commands:\n" +
	"/daily <batch> <mortality> <weak> <legWeak> <feedKg> <avgWeightG>\n" +
	"  e.g. /daily B2024-001 3 1 0 120 2450\n" +
	"/status <batch>\n" +
	"/help"

// BatchLedger is the part of the batch service the dispatcher drives.
type BatchLedger interface {
	Get(ctx context.Context, id string) (models.Batch, error)
	AddDailyEntry(ctx context.Context, batchID string, in models.DailyEntry, addedBy string) (models.Batch, models.DailyEntry, error)
	Metrics(ctx context.Context, id string) (metrics.BatchMetrics, error)
}

// Directory resolves a WhatsApp sender to a back-office user.
type Directory interface {
	FindUserByPhone(ctx context.Context, phone string) (models.User, error)
}

// Dispatcher executes parsed commands on behalf of a sender.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	batches BatchLedger
	users   Directory
	logger  *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(ledger BatchLedger, users Directory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		batches: ledger,
		users:   users,
		logger:  logger,
	}
}

// HandleCommand runs cmd for sender and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	if cmd.Type == models.CommandHelp {
		return Usage, nil
	}
	if cmd.Type == models.CommandUnknown {
		return "", ErrUnsupportedCommand
	}

	user, err := s.users.FindUserByPhone(ctx, sender)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", ErrUnknownSender
		}
		return "", fmt.Errorf("resolve sender: %w", err)
	}
	if user.Status != models.StatusActive || (user.Role != models.RoleSupervisor && user.Role != models.RoleAdmin) {
		return "", ErrUnknownSender
	}

	switch cmd.Type {
	case models.CommandDaily:
		return s.daily(ctx, cmd, user)
	case models.CommandStatus:
		return s.status(ctx, cmd, user)
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) daily(ctx context.Context, cmd models.Command, user models.User) (string, error) {
	entry, code, err := buildDailyEntry(cmd)
	if err != nil {
		return "", err
	}
	if _, err := s.assignedBatch(ctx, code, user); err != nil {
		return "", err
	}

	b, saved, err := s.batches.AddDailyEntry(ctx, code, entry, user.Name)
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Daily entry saved for %s on %s (day %d): %d dead, %d weak, %d leg weak.",
		b.BatchCode, saved.Date, saved.BirdAge, saved.Mortality, saved.WeakBirds, saved.LegWeakBirds)
	message += fmt.Sprintf("\nBirds on farm: %d. Mortality rate: %.2f%%.", b.CurrentBirds, b.MortalityRate)
	if b.FCR > 0 {
		message += fmt.Sprintf(" FCR: %.2f.", b.FCR)
	}
	return message, nil
}

func (s *Service) status(ctx context.Context, cmd models.Command, user models.User) (string, error) {
	if len(cmd.Args) != 1 {
		return "", ErrInvalidArguments
	}
	code := strings.ToUpper(cmd.Args[0])
	b, err := s.assignedBatch(ctx, code, user)
	if err != nil {
		return "", err
	}

	m, err := s.batches.Metrics(ctx, b.ID)
	if err != nil {
		return "", err
	}
	return StatusMessage(b, m), nil
}

// assignedBatch loads the batch and checks the user may report on it.
// Admins may report on any batch.
func (s *Service) assignedBatch(ctx context.Context, code string, user models.User) (models.Batch, error) {
	b, err := s.batches.Get(ctx, code)
	if err != nil {
		return models.Batch{}, err
	}
	if user.Role == models.RoleAdmin {
		return b, nil
	}
	if strings.EqualFold(b.Supervisor, user.Name) || slices.Contains(user.AssignedFarms, b.FarmerID) {
		return b, nil
	}
	return models.Batch{}, fmt.Errorf("%w: %s", ErrNotAssigned, b.BatchCode)
}

// StatusMessage is the /status reply for a batch.
func StatusMessage(b models.Batch, m metrics.BatchMetrics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s, %s) - %s\n", b.BatchCode, b.FarmName, b.FarmerName, b.Status)
	fmt.Fprintf(&sb, "Birds: %d of %d, mortality %d (%.2f%%)\n", m.CurrentBirds, m.TotalBirds, m.TotalMortality, m.MortalityRate)
	fmt.Fprintf(&sb, "Avg weight: %.0f g, feed used: %.2f kg", m.AvgWeight, m.FeedConsumedKg)
	if m.FCRAvailable {
		fmt.Fprintf(&sb, ", FCR %.2f", m.FCR)
	}
	fmt.Fprintf(&sb, "\nFeed stock: %.2f bags", b.FeedStock)
	return sb.String()
}

// buildDailyEntry parses "/daily <batch> <mortality> <weak> <legWeak> <feedKg> <avgWeightG>".
func buildDailyEntry(cmd models.Command) (models.DailyEntry, string, error) {
	if len(cmd.Args) != 6 {
		return models.DailyEntry{}, "", ErrInvalidArguments
	}

	counts := make([]int, 3)
	for i := range counts {
		n, err := strconv.Atoi(cmd.Args[i+1])
		if err != nil || n < 0 {
			return models.DailyEntry{}, "", ErrInvalidArguments
		}
		counts[i] = n
	}

	feedKg, err := strconv.ParseFloat(cmd.Args[4], 64)
	if err != nil || feedKg < 0 {
		return models.DailyEntry{}, "", ErrInvalidArguments
	}
	weight, err := strconv.ParseFloat(cmd.Args[5], 64)
	if err != nil || weight < 0 {
		return models.DailyEntry{}, "", ErrInvalidArguments
	}

	return models.DailyEntry{
		Mortality:    counts[0],
		WeakBirds:    counts[1],
		LegWeakBirds: counts[2],
		FeedUsed:     feedKg,
		AvgWeight:    weight,
	}, strings.ToUpper(cmd.Args[0]), nil
}

// ReplyForError turns a dispatch failure into a message for the sender.
// ok is false for internal failures that should not be described.
func ReplyForError(err error) (reply string, ok bool) {
	switch {
	case errors.Is(err, ErrInvalidArguments), errors.Is(err, ErrUnsupportedCommand):
		return "Sorry, I could not read that.\n" + Usage, true
	case errors.Is(err, ErrUnknownSender):
		return "This number is not registered as a supervisor. Please contact the office.", true
	case errors.Is(err, ErrNotAssigned):
		return "That batch is not assigned to you.", true
	case errors.Is(err, batches.ErrNotFound):
		return "Batch not found. Check the batch code, e.g. B2024-001.", true
	case errors.Is(err, batches.ErrBatchCompleted):
		return "That batch is completed and no longer accepts entries.", true
	case errors.Is(err, batches.ErrInsufficientBirds):
		return "The losses reported exceed the birds on farm.", true
	case errors.Is(err, batches.ErrInvalidEntry):
		return "The entry was rejected: " + err.Error(), true
	}
	return "Something went wrong saving your message. Please try again later.", false
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"parking_facility/internal/domain"
	"parking_facility/internal/repository"
)

type FullnessPolicy string

const (
	// FullPerClass: the reported full flag is true only when no vehicle
	// class has an eligible free spot left.
	FullPerClass FullnessPolicy = "per-class"
	// FullFacilityWide: the legacy reading, true when every spot is occupied.
	FullFacilityWide FullnessPolicy = "facility-wide"
)

// SpotNotifier receives occupancy changes for display boards. Implementations
// must not block; the facility calls it outside its lock.
type SpotNotifier interface {
	NotifySpotUpdate(update domain.SpotUpdateNotification)
}

// FacilityConfig carries the engine's policy knobs.
type FacilityConfig struct {
	Name              string
	BaseRatePerHour   float64
	TicketNumberFloor int
	// ActivateOnIssue advances tickets straight to IN_USE at issuance. When
	// false, tickets hold at ISSUED until ActivateTicket confirms the vehicle
	// reached its spot.
	ActivateOnIssue bool
	Fullness        FullnessPolicy
}

// FacilityService composes the registry, matcher, ledger, rate calculator,
// payment processor and exit validator behind one facility-wide RWMutex.
// Write paths (issue, pay, validate, cancel, refund, config mutation) take
// the exclusive side; snapshot queries take the read side, so display reads
// never observe a torn write.
type FacilityService struct {
	mu sync.RWMutex

	name     string
	registry *SpotRegistry
	matcher  *SpotMatcher
	ledger   *TicketLedger
	rates    *RateCalculator
	payments *PaymentProcessor
	exits    *ExitValidator

	entrances  map[int]*domain.Entrance
	exitPanels map[int]*domain.Exit

	activateOnIssue bool
	fullness        FullnessPolicy

	notifier SpotNotifier
	archive  repository.TicketArchiveRepository
	metrics  *EngineMetrics
	logger   *zap.SugaredLogger

	now func() time.Time
}

func NewFacilityService(
	cfg FacilityConfig,
	gateway PaymentGateway,
	archive repository.TicketArchiveRepository,
	notifier SpotNotifier,
	metrics *EngineMetrics,
	logger *zap.SugaredLogger,
) *FacilityService {
	if cfg.Fullness == "" {
		cfg.Fullness = FullPerClass
	}
	now := func() time.Time { return time.Now().UTC() }
	registry := NewSpotRegistry()
	ledger := NewTicketLedger(cfg.TicketNumberFloor)
	rates := NewRateCalculator(cfg.BaseRatePerHour)
	return &FacilityService{
		name:            cfg.Name,
		registry:        registry,
		matcher:         NewSpotMatcher(registry),
		ledger:          ledger,
		rates:           rates,
		payments:        NewPaymentProcessor(ledger, rates, gateway, now),
		exits:           NewExitValidator(ledger, registry),
		entrances:       make(map[int]*domain.Entrance),
		exitPanels:      make(map[int]*domain.Exit),
		activateOnIssue: cfg.ActivateOnIssue,
		fullness:        cfg.Fullness,
		notifier:        notifier,
		archive:         archive,
		metrics:         metrics,
		logger:          logger,
	}
}

// SetClock replaces the time source. Test hook.
func (s *FacilityService) SetClock(now func() time.Time) {
	s.now = now
	s.payments.now = now
}

func (s *FacilityService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// --- Configuration-time operations ---

func (s *FacilityService) AddFloor(ctx context.Context, dto domain.FloorDTO) (*domain.Floor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	floor, err := s.registry.AddFloor(dto.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("floor added", "floor", dto.Name)
	return floor, nil
}

func (s *FacilityService) AddSpot(ctx context.Context, floorName string, dto domain.SpotDTO) (*domain.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spot, err := s.registry.AddSpot(floorName, dto.ID, domain.SpotCategory(dto.Category))
	if err != nil {
		return nil, err
	}
	s.logger.Infow("spot added", "floor", floorName, "spot_id", spot.ID, "category", spot.Category)
	return spot, nil
}

func (s *FacilityService) AddEntrance(ctx context.Context, dto domain.PanelDTO) (*domain.Entrance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entrances[dto.ID]; exists {
		return nil, fmt.Errorf("entrance %d: %w", dto.ID, domain.ErrDuplicateID)
	}
	entrance := &domain.Entrance{ID: dto.ID, Name: dto.Name}
	s.entrances[dto.ID] = entrance
	s.logger.Infow("entrance added", "entrance_id", dto.ID, "name", dto.Name)
	return entrance, nil
}

func (s *FacilityService) AddExit(ctx context.Context, dto domain.PanelDTO) (*domain.Exit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.exitPanels[dto.ID]; exists {
		return nil, fmt.Errorf("exit %d: %w", dto.ID, domain.ErrDuplicateID)
	}
	exit := &domain.Exit{ID: dto.ID, Name: dto.Name}
	s.exitPanels[dto.ID] = exit
	s.logger.Infow("exit added", "exit_id", dto.ID, "name", dto.Name)
	return exit, nil
}

func (s *FacilityService) SetBaseRate(ctx context.Context, ratePerHour float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates.SetBaseRate(ratePerHour)
	s.logger.Infow("base rate updated", "rate_per_hour", ratePerHour)
}

// --- Entrance flow ---

// RequestTicket is the entrance-panel entry point. Match, reserve, number,
// create and link run as one atomic unit under the facility lock; a failure
// at any step after the match unwinds the reservation, so no partial state
// is ever observable.
func (s *FacilityService) RequestTicket(ctx context.Context, dto domain.TicketRequestDTO) (*domain.Ticket, error) {
	class := domain.VehicleClass(dto.VehicleClass)
	if !class.Valid() {
		return nil, fmt.Errorf("invalid vehicle class %q", dto.VehicleClass)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entrances[dto.EntranceID]; !ok {
		return nil, fmt.Errorf("entrance %d: %w", dto.EntranceID, domain.ErrUnknownEntrance)
	}
	if s.ledger.HasActive(dto.VehicleLicense) {
		s.metrics.TicketRejected("already_parked")
		return nil, fmt.Errorf("vehicle %q: %w", dto.VehicleLicense, domain.ErrAlreadyParked)
	}

	spot, err := s.matcher.FindSpot(class)
	if err != nil {
		s.metrics.TicketRejected("lot_full")
		return nil, err
	}
	if err := s.registry.Reserve(spot.ID, dto.VehicleLicense); err != nil {
		return nil, err
	}
	ticket, err := s.ledger.Issue(dto.VehicleLicense, class, dto.EntranceID, spot.ID, s.clock(), s.activateOnIssue)
	if err != nil {
		// Unwind the reservation; the release cannot fail on a spot reserved
		// two lines up under the same lock.
		_ = s.registry.Release(spot.ID)
		return nil, err
	}

	s.metrics.TicketIssued()
	s.metrics.SetOccupied(s.registry.OccupiedSpots())
	s.notifySpotLocked(spot.ID)
	s.logger.Infow("ticket issued",
		"ticket_no", ticket.TicketNo, "license", dto.VehicleLicense,
		"class", class, "spot_id", spot.ID, "entrance_id", dto.EntranceID)
	return copyTicket(ticket), nil
}

// ActivateTicket confirms a held ISSUED ticket once the vehicle reaches its
// spot. Only meaningful when ActivateOnIssue is disabled.
func (s *FacilityService) ActivateTicket(ctx context.Context, ticketNo int) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, err := s.ledger.Activate(ticketNo)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("ticket activated", "ticket_no", ticketNo)
	return ticket, nil
}

// --- Payment and exit flow ---

// PayTicket runs the payment processor for a kiosk-style prepayment. The
// simulated gateway is called under the lock; the spec models it as a
// blocking call and the single coarse lock is the documented design.
func (s *FacilityService) PayTicket(ctx context.Context, ticketNo int, method domain.PaymentMethod) (*domain.Ticket, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("invalid payment method %q", method)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payTicketLocked(ctx, ticketNo, method)
}

func (s *FacilityService) payTicketLocked(ctx context.Context, ticketNo int, method domain.PaymentMethod) (*domain.Ticket, error) {
	ticket, err := s.payments.Pay(ctx, ticketNo, method)
	if err != nil {
		s.metrics.PaymentAttempt("failed")
		return nil, err
	}
	s.metrics.PaymentAttempt("completed")
	s.logger.Infow("ticket paid",
		"ticket_no", ticketNo, "amount", ticket.Amount, "method", method)
	return ticket, nil
}

// RequestExit is the exit-panel entry point: pay (unless already paid at a
// kiosk), then validate, free the spot and clear the vehicle link.
func (s *FacilityService) RequestExit(ctx context.Context, dto domain.ExitRequestDTO) (*domain.ExitResponseDTO, error) {
	method := domain.PaymentMethod(dto.Method)
	if !method.Valid() {
		return nil, fmt.Errorf("invalid payment method %q", dto.Method)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exitPanels[dto.ExitID]; !ok {
		return nil, fmt.Errorf("exit %d: %w", dto.ExitID, domain.ErrUnknownExit)
	}
	current, err := s.ledger.get(dto.TicketNo)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.TicketInUse {
		if _, err := s.payTicketLocked(ctx, dto.TicketNo, method); err != nil {
			return nil, err
		}
	}

	ticket, err := s.exits.Validate(dto.TicketNo, dto.ExitID)
	if err != nil {
		return nil, err
	}

	s.metrics.SetOccupied(s.registry.OccupiedSpots())
	s.notifySpotLocked(ticket.SpotID)
	s.archiveTicket(ticket)
	s.logger.Infow("ticket validated",
		"ticket_no", ticket.TicketNo, "amount", ticket.Amount, "exit_id", dto.ExitID)
	return &domain.ExitResponseDTO{
		TicketNo:      ticket.TicketNo,
		AmountCharged: ticket.Amount,
		Validated:     true,
	}, nil
}

// --- Administrative transitions ---

// CancelTicket and RefundTicket are admin-only settlements: both are terminal,
// release the spot and clear the vehicle link just like a validated exit.

func (s *FacilityService) CancelTicket(ctx context.Context, ticketNo int) (*domain.Ticket, error) {
	return s.settleTicket(ctx, ticketNo, domain.TicketCanceled)
}

func (s *FacilityService) RefundTicket(ctx context.Context, ticketNo int) (*domain.Ticket, error) {
	return s.settleTicket(ctx, ticketNo, domain.TicketRefunded)
}

func (s *FacilityService) settleTicket(ctx context.Context, ticketNo int, to domain.TicketStatus) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.ledger.get(ticketNo)
	if err != nil {
		return nil, err
	}
	if err := ticket.Advance(to); err != nil {
		return nil, fmt.Errorf("ticket %d from %s to %s: %w", ticketNo, ticket.Status, to, err)
	}
	if err := s.registry.Release(ticket.SpotID); err != nil {
		return nil, fmt.Errorf("release spot for ticket %d: %w", ticketNo, err)
	}
	s.ledger.ClearActive(ticket.VehicleLicense)

	s.metrics.SetOccupied(s.registry.OccupiedSpots())
	s.notifySpotLocked(ticket.SpotID)
	out := copyTicket(ticket)
	s.archiveTicket(out)
	s.logger.Infow("ticket settled by admin", "ticket_no", ticketNo, "status", to)
	return out, nil
}

// --- Queries ---

func (s *FacilityService) GetTicket(ctx context.Context, ticketNo int) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Get(ticketNo)
}

// SnapshotSpots returns a consistent copy of spot state for display boards.
func (s *FacilityService) SnapshotSpots(ctx context.Context) []domain.SpotSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Snapshot()
}

func (s *FacilityService) FloorSpots(ctx context.Context, floorName string) ([]domain.SpotSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.registry.Floor(floorName); err != nil {
		return nil, err
	}
	snapshot := make([]domain.SpotSnapshot, 0)
	for _, spot := range s.registry.Snapshot() {
		if spot.FloorName == floorName {
			snapshot = append(snapshot, spot)
		}
	}
	return snapshot, nil
}

// Status reports occupancy; the full flag follows the configured policy.
func (s *FacilityService) Status(ctx context.Context) domain.FacilityStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := domain.FacilityStatus{
		Floors:        s.registry.FloorStatuses(),
		TotalSpots:    s.registry.TotalSpots(),
		OccupiedSpots: s.registry.OccupiedSpots(),
		ActiveTickets: s.ledger.ActiveCount(),
	}
	switch s.fullness {
	case FullFacilityWide:
		status.Full = status.TotalSpots > 0 && status.OccupiedSpots == status.TotalSpots
	default:
		full := status.TotalSpots > 0
		for class := range eligibleCategories {
			if s.matcher.HasSpotFor(class) {
				full = false
				break
			}
		}
		status.Full = full
	}
	return status
}

// --- Internal helpers ---

// notifySpotLocked captures the notification under the lock so boards never
// see a torn update, then hands it to the notifier outside the engine path.
func (s *FacilityService) notifySpotLocked(spotID int) {
	if s.notifier == nil {
		return
	}
	spot, err := s.registry.Spot(spotID)
	if err != nil {
		return
	}
	s.notifier.NotifySpotUpdate(domain.SpotUpdateNotification{
		SpotID:    spot.ID,
		FloorName: spot.FloorName,
		Category:  spot.Category,
		Occupied:  spot.Occupied,
		Timestamp: s.clock(),
	})
}

// archiveTicket persists a settled ticket off the engine path. Best effort:
// a failed archive is logged, never surfaced, and the ledger copy remains
// authoritative.
func (s *FacilityService) archiveTicket(ticket *domain.Ticket) {
	if s.archive == nil {
		return
	}
	snapshot := copyTicket(ticket)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.archive.Save(ctx, snapshot); err != nil {
			s.logger.Warnw("ticket archive failed", "ticket_no", snapshot.TicketNo, "error", err)
		}
	}()
}

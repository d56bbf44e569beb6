package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parking_facility/internal/domain"
)

// decliningGateway fails the first n charges, then approves.
type decliningGateway struct {
	declines int
	calls    int
}

func (g *decliningGateway) Charge(ctx context.Context, amount float64, method domain.PaymentMethod) error {
	g.calls++
	if g.calls <= g.declines {
		return errors.New("card declined")
	}
	return nil
}

type capturingNotifier struct {
	mu      sync.Mutex
	updates []domain.SpotUpdateNotification
}

func (n *capturingNotifier) NotifySpotUpdate(update domain.SpotUpdateNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, update)
}

func newTestFacility(t *testing.T, cfg FacilityConfig, gateway PaymentGateway) *FacilityService {
	t.Helper()
	if gateway == nil {
		gateway = NewSimulatedGateway()
	}
	fs := NewFacilityService(cfg, gateway, nil, nil, nil, zap.NewNop().Sugar())

	ctx := context.Background()
	_, err := fs.AddFloor(ctx, domain.FloorDTO{Name: "G"})
	require.NoError(t, err)
	_, err = fs.AddEntrance(ctx, domain.PanelDTO{ID: 1, Name: "north gate"})
	require.NoError(t, err)
	_, err = fs.AddExit(ctx, domain.PanelDTO{ID: 1, Name: "south gate"})
	require.NoError(t, err)
	return fs
}

func addTestSpot(t *testing.T, fs *FacilityService, floor string, id int, cat domain.SpotCategory) {
	t.Helper()
	_, err := fs.AddSpot(context.Background(), floor, domain.SpotDTO{ID: id, Category: string(cat)})
	require.NoError(t, err)
}

func defaultConfig() FacilityConfig {
	return FacilityConfig{
		Name:              "central-garage",
		BaseRatePerHour:   50,
		TicketNumberFloor: 1000,
		ActivateOnIssue:   true,
		Fullness:          FullPerClass,
	}
}

func TestRoundTripIssuePayValidate(t *testing.T) {
	fs := newTestFacility(t, defaultConfig(), nil)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)
	ctx := context.Background()

	entry := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	now := entry
	fs.SetClock(func() time.Time { return now })

	ticket, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "30A-111.11", VehicleClass: "car",
	})
	require.NoError(t, err)
	assert.Equal(t, 1001, ticket.TicketNo)
	assert.Equal(t, domain.TicketInUse, ticket.Status)
	assert.Equal(t, 1, ticket.SpotID)
	assert.Equal(t, entry, ticket.EntryTime)

	snapshot := fs.SnapshotSpots(ctx)
	require.Len(t, snapshot, 1)
	assert.True(t, snapshot[0].Occupied)

	now = entry.Add(2 * time.Hour)
	resp, err := fs.RequestExit(ctx, domain.ExitRequestDTO{
		ExitID: 1, TicketNo: 1001, Method: "credit_card",
	})
	require.NoError(t, err)
	assert.True(t, resp.Validated)
	assert.InDelta(t, 87.5, resp.AmountCharged, 1e-9)

	// Spot freed, active link cleared, record retained.
	snapshot = fs.SnapshotSpots(ctx)
	assert.False(t, snapshot[0].Occupied)
	status := fs.Status(ctx)
	assert.Equal(t, 0, status.ActiveTickets)
	assert.Equal(t, 0, status.OccupiedSpots)

	settled, err := fs.GetTicket(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketValidated, settled.Status)
	require.NotNil(t, settled.Payment)
	assert.Equal(t, domain.PaymentCompleted, settled.Payment.Status)
	assert.True(t, settled.ExitTime.Valid)
	assert.Equal(t, int64(1), settled.ExitID.Int64)

	// The same vehicle can come back for a fresh ticket.
	reissued, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "30A-111.11", VehicleClass: "car",
	})
	require.NoError(t, err)
	assert.Equal(t, 1002, reissued.TicketNo)
}

func TestRequestTicketRejectsDuplicateVehicle(t *testing.T) {
	fs := newTestFacility(t, defaultConfig(), nil)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)
	addTestSpot(t, fs, "G", 2, domain.SpotCompact)
	ctx := context.Background()

	_, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "30A-111.11", VehicleClass: "car",
	})
	require.NoError(t, err)

	_, err = fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "30A-111.11", VehicleClass: "car",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyParked)

	// The duplicate must not have consumed the second spot.
	assert.Equal(t, 1, fs.Status(ctx).OccupiedSpots)
}

func TestRequestTicketLotFullPerClass(t *testing.T) {
	fs := newTestFacility(t, defaultConfig(), nil)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)
	addTestSpot(t, fs, "G", 2, domain.SpotLarge)
	ctx := context.Background()

	_, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-1", VehicleClass: "car",
	})
	require.NoError(t, err)

	truck, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "truck-1", VehicleClass: "truck",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, truck.SpotID)

	// Both spots taken: full for the next car even though classes differ.
	_, err = fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-2", VehicleClass: "car",
	})
	assert.ErrorIs(t, err, domain.ErrLotFull)

	status := fs.Status(ctx)
	assert.True(t, status.Full)
	assert.Equal(t, 2, status.ActiveTickets)
}

func TestRequestTicketValidation(t *testing.T) {
	fs := newTestFacility(t, defaultConfig(), nil)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)
	ctx := context.Background()

	_, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 9, VehicleLicense: "car-1", VehicleClass: "car",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownEntrance)

	_, err = fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-1", VehicleClass: "hovercraft",
	})
	assert.Error(t, err)
}

func TestExitRejectsUnpaidTicketUntouched(t *testing.T) {
	cfg := defaultConfig()
	cfg.ActivateOnIssue = false
	fs := newTestFacility(t, cfg, nil)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)
	ctx := context.Background()

	ticket, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-1", VehicleClass: "car",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketIssued, ticket.Status)

	// Still held at ISSUED: neither payable nor validatable.
	_, err = fs.RequestExit(ctx, domain.ExitRequestDTO{
		ExitID: 1, TicketNo: ticket.TicketNo, Method: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTicketState)

	got, err := fs.GetTicket(ctx, ticket.TicketNo)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketIssued, got.Status)
	assert.True(t, fs.SnapshotSpots(ctx)[0].Occupied, "rejected exit must not free the spot")

	// After activation the normal flow resumes.
	_, err = fs.ActivateTicket(ctx, ticket.TicketNo)
	require.NoError(t, err)
	resp, err := fs.RequestExit(ctx, domain.ExitRequestDTO{
		ExitID: 1, TicketNo: ticket.TicketNo, Method: "cash",
	})
	require.NoError(t, err)
	assert.True(t, resp.Validated)
}

func TestPaymentDeclineLeavesTicketPayable(t *testing.T) {
	gateway := &decliningGateway{declines: 1}
	fs := newTestFacility(t, defaultConfig(), gateway)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)
	ctx := context.Background()

	entry := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	now := entry
	fs.SetClock(func() time.Time { return now })

	ticket, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-1", VehicleClass: "car",
	})
	require.NoError(t, err)

	now = entry.Add(time.Hour)
	_, err = fs.PayTicket(ctx, ticket.TicketNo, domain.PaymentCreditCard)
	assert.ErrorIs(t, err, domain.ErrPaymentFailed)

	got, err := fs.GetTicket(ctx, ticket.TicketNo)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketInUse, got.Status)
	assert.Nil(t, got.Payment)

	// The retry an hour later bills the longer stay.
	now = entry.Add(2 * time.Hour)
	paid, err := fs.PayTicket(ctx, ticket.TicketNo, domain.PaymentCreditCard)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPaid, paid.Status)
	assert.InDelta(t, 87.5, paid.Amount, 1e-9)
	assert.Equal(t, 2, gateway.calls)

	// A paid ticket validates without a second charge.
	resp, err := fs.RequestExit(ctx, domain.ExitRequestDTO{
		ExitID: 1, TicketNo: ticket.TicketNo, Method: "credit_card",
	})
	require.NoError(t, err)
	assert.InDelta(t, 87.5, resp.AmountCharged, 1e-9)
	assert.Equal(t, 2, gateway.calls)
}

func TestCancelAndRefundReleaseSpot(t *testing.T) {
	fs := newTestFacility(t, defaultConfig(), nil)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)
	addTestSpot(t, fs, "G", 2, domain.SpotCompact)
	ctx := context.Background()

	first, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-1", VehicleClass: "car",
	})
	require.NoError(t, err)

	canceled, err := fs.CancelTicket(ctx, first.TicketNo)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketCanceled, canceled.Status)
	assert.Equal(t, 0, fs.Status(ctx).OccupiedSpots)

	// Terminal states admit no further transitions.
	_, err = fs.RefundTicket(ctx, first.TicketNo)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	second, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-2", VehicleClass: "car",
	})
	require.NoError(t, err)
	_, err = fs.PayTicket(ctx, second.TicketNo, domain.PaymentCash)
	require.NoError(t, err)

	refunded, err := fs.RefundTicket(ctx, second.TicketNo)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketRefunded, refunded.Status)
	assert.Equal(t, 0, fs.Status(ctx).ActiveTickets)
}

func TestConcurrentIssuanceUniqueNumbers(t *testing.T) {
	fs := newTestFacility(t, defaultConfig(), nil)
	const n = 40
	for i := 1; i <= n; i++ {
		addTestSpot(t, fs, "G", i, domain.SpotCompact)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticket, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
				EntranceID:     1,
				VehicleLicense: fmt.Sprintf("car-%02d", i),
				VehicleClass:   "car",
			})
			if assert.NoError(t, err) {
				numbers <- ticket.TicketNo
			}
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for no := range numbers {
		assert.Greater(t, no, 1000)
		assert.False(t, seen[no], "ticket number %d issued twice", no)
		seen[no] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, fs.Status(context.Background()).OccupiedSpots)
}

func TestStatusFullnessPolicies(t *testing.T) {
	cfg := defaultConfig()
	cfg.Fullness = FullFacilityWide
	fs := newTestFacility(t, cfg, nil)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)
	addTestSpot(t, fs, "G", 2, domain.SpotMotorcycle)
	ctx := context.Background()

	_, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-1", VehicleClass: "car",
	})
	require.NoError(t, err)

	// One motorcycle spot remains, so the facility-wide reading is not full
	// even though cars are turned away.
	assert.False(t, fs.Status(ctx).Full)

	_, err = fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "moto-1", VehicleClass: "motorcycle",
	})
	require.NoError(t, err)
	assert.True(t, fs.Status(ctx).Full)
}

func TestSpotNotificationsOnOccupancyChange(t *testing.T) {
	notifier := &capturingNotifier{}
	fs := NewFacilityService(defaultConfig(), NewSimulatedGateway(), nil, notifier, nil, zap.NewNop().Sugar())
	ctx := context.Background()
	_, err := fs.AddFloor(ctx, domain.FloorDTO{Name: "G"})
	require.NoError(t, err)
	_, err = fs.AddEntrance(ctx, domain.PanelDTO{ID: 1, Name: "north"})
	require.NoError(t, err)
	_, err = fs.AddExit(ctx, domain.PanelDTO{ID: 1, Name: "south"})
	require.NoError(t, err)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)

	ticket, err := fs.RequestTicket(ctx, domain.TicketRequestDTO{
		EntranceID: 1, VehicleLicense: "car-1", VehicleClass: "car",
	})
	require.NoError(t, err)
	_, err = fs.RequestExit(ctx, domain.ExitRequestDTO{
		ExitID: 1, TicketNo: ticket.TicketNo, Method: "cash",
	})
	require.NoError(t, err)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.updates, 2)
	assert.True(t, notifier.updates[0].Occupied)
	assert.False(t, notifier.updates[1].Occupied)
	assert.Equal(t, "G", notifier.updates[0].FloorName)
}

func TestFloorSpotsUnknownFloor(t *testing.T) {
	fs := newTestFacility(t, defaultConfig(), nil)
	addTestSpot(t, fs, "G", 1, domain.SpotCompact)

	spots, err := fs.FloorSpots(context.Background(), "G")
	require.NoError(t, err)
	assert.Len(t, spots, 1)

	_, err = fs.FloorSpots(context.Background(), "B9")
	assert.ErrorIs(t, err, domain.ErrUnknownFloor)
}

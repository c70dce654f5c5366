package storekeeper

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storeroom/internal/database"
	"storeroom/internal/ledger"
	"storeroom/internal/models"
	"storeroom/internal/monitoring"
)

const tracerName = "storeroom/storekeeper"

// Service is the storekeeper's view of the ledger. It runs ledger operations
// and, once they commit, refreshes the read model, metrics and subscribers.
type Service struct {
	ledger     *ledger.Ledger
	projection *database.Projection

	metrics     *monitoring.MetricsCollector
	monitor     *monitoring.Monitor
	publisher   Publisher
	technicians []string

	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time

	// syncMu orders read model refreshes so the last writer holds the
	// newest snapshot.
	syncMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(mc *monitoring.MetricsCollector) Option {
	return func(s *Service) { s.metrics = mc }
}

func WithMonitor(m *monitoring.Monitor) Option {
	return func(s *Service) { s.monitor = m }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithTechnicians(names []string) Option {
	return func(s *Service) { s.technicians = append([]string(nil), names...) }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a service over a seeded ledger and its read model.
func New(l *ledger.Ledger, projection *database.Projection, opts ...Option) *Service {
	s := &Service{
		ledger:     l,
		projection: projection,
		metrics:    monitoring.NewMetricsCollector(),
		monitor:    monitoring.NewMonitor(),
		publisher:  nopPublisher{},
		logger:     zerolog.Nop(),
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the seeded ledger into the read model and metrics.
func (s *Service) Start(ctx context.Context) error {
	ctx, finish := s.begin(ctx, "start")
	err := s.refresh(ctx)
	finish(err)
	return err
}

// CreateItem adds a new inventory item.
func (s *Service) CreateItem(ctx context.Context, in ledger.NewItem) (models.InventoryItem, error) {
	ctx, finish := s.begin(ctx, "create_item", attribute.String("item.name", in.Name), attribute.Int("quantity", in.InitialStock))
	item, err := s.ledger.CreateItem(in)
	finish(err)
	if err != nil {
		return item, err
	}
	s.metrics.RecordUnits("in", in.InitialStock)
	s.committed(ctx, itemEvent(EventItemCreated, item, s.now()))
	return item, nil
}

// IssueStock hands units to a technician.
func (s *Service) IssueStock(ctx context.Context, itemID string, quantity int, technician string) (models.InventoryItem, error) {
	ctx, finish := s.begin(ctx, "issue_stock", attribute.String("item.id", itemID), attribute.Int("quantity", quantity))
	item, err := s.ledger.IssueStock(itemID, quantity, technician)
	finish(err)
	if err != nil {
		return item, err
	}
	s.metrics.RecordUnits("out", quantity)
	s.committed(ctx, itemEvent(EventStockIssued, item, s.now()))
	return item, nil
}

// Restock adds units to an item.
func (s *Service) Restock(ctx context.Context, itemID string, quantity int, reason string) (models.InventoryItem, error) {
	ctx, finish := s.begin(ctx, "restock", attribute.String("item.id", itemID), attribute.Int("quantity", quantity))
	item, err := s.ledger.Restock(itemID, quantity, reason)
	finish(err)
	if err != nil {
		return item, err
	}
	s.metrics.RecordUnits("in", quantity)
	s.committed(ctx, itemEvent(EventItemRestocked, item, s.now()))
	return item, nil
}

// SubmitRequest records a technician's material request.
func (s *Service) SubmitRequest(ctx context.Context, in ledger.NewRequest) (models.MaterialRequest, error) {
	ctx, finish := s.begin(ctx, "submit_request", attribute.String("request.from", in.From), attribute.Int("request.lines", len(in.Items)))
	req, err := s.ledger.SubmitRequest(in)
	finish(err)
	if err != nil {
		return req, err
	}
	s.committed(ctx, requestEvent(EventRequestSubmitted, req, s.now()))
	return req, nil
}

// SetRequestStatus approves or rejects a request.
func (s *Service) SetRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) (models.MaterialRequest, error) {
	ctx, finish := s.begin(ctx, "set_request_status", attribute.String("request.id", requestID), attribute.String("request.status", string(status)))
	req, err := s.ledger.SetRequestStatus(requestID, status)
	finish(err)
	if err != nil {
		return req, err
	}
	s.committed(ctx, requestEvent(EventRequestStatusChanged, req, s.now()))
	return req, nil
}

// FulfillRequest issues every line of an approved request.
func (s *Service) FulfillRequest(ctx context.Context, requestID string) (models.MaterialRequest, []models.InventoryItem, error) {
	ctx, finish := s.begin(ctx, "fulfill_request", attribute.String("request.id", requestID))
	req, items, err := s.ledger.FulfillRequest(requestID)
	finish(err)
	if err != nil {
		return req, nil, err
	}

	at := s.now()
	units := 0
	for _, line := range req.Items {
		units += line.Quantity
	}
	s.metrics.RecordUnits("out", units)
	events := make([]Event, 0, len(items)+1)
	for _, item := range items {
		events = append(events, itemEvent(EventStockIssued, item, at))
	}
	events = append(events, requestEvent(EventRequestIssued, req, at))
	s.committed(ctx, events...)
	return req, items, nil
}

// Items lists the inventory, newest first.
func (s *Service) Items(ctx context.Context) []models.InventoryItem {
	return s.ledger.Items()
}

// Item returns one item.
func (s *Service) Item(ctx context.Context, id string) (models.InventoryItem, error) {
	return s.ledger.Item(id)
}

// History returns an item's history, newest first as the dashboard shows it.
func (s *Service) History(ctx context.Context, id string) ([]models.HistoryEntry, error) {
	history, err := s.ledger.History(id)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// SearchItems finds items whose name or category contains query.
func (s *Service) SearchItems(ctx context.Context, query string) ([]models.InventoryItem, error) {
	if strings.TrimSpace(query) == "" {
		return s.ledger.Items(), nil
	}
	_, span := s.tracer.Start(ctx, "storekeeper.search_items", trace.WithAttributes(attribute.String("query", query)))
	defer span.End()

	ids, err := s.projection.SearchItemIDs(query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	items := make([]models.InventoryItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.ledger.Item(id)
		if errors.Is(err, ledger.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	span.SetAttributes(attribute.Int("results", len(items)))
	return items, nil
}

// Requests lists material requests, optionally only those with status.
func (s *Service) Requests(ctx context.Context, status models.RequestStatus) ([]models.MaterialRequest, error) {
	if status == "" {
		return s.ledger.Requests(), nil
	}
	if !status.Valid() {
		return nil, errors.Wrapf(ledger.ErrInvalidValue, "status %q", status)
	}
	return s.projection.Requests(status)
}

// Request returns one material request.
func (s *Service) Request(ctx context.Context, id string) (models.MaterialRequest, error) {
	return s.ledger.Request(id)
}

// Summary returns the dashboard counters.
func (s *Service) Summary(ctx context.Context) models.Summary {
	return s.ledger.Summary()
}

// Audit replays every item's history against its stock.
func (s *Service) Audit(ctx context.Context) []ledger.Discrepancy {
	discrepancies := s.ledger.Audit()
	if len(discrepancies) > 0 {
		s.logger.Error().Int("items", len(discrepancies)).Msg("ledger audit found stock that does not match history")
	}
	return discrepancies
}

// Technicians returns the roster stock can be issued to.
func (s *Service) Technicians() []string {
	return append([]string(nil), s.technicians...)
}

// Activity is the storeroom activity feed plus operation counters.
type Activity struct {
	Entries  []models.Activity      `json:"entries"`
	Counters map[string]interface{} `json:"counters"`
}

// RecentActivity returns the newest history entries across all items.
func (s *Service) RecentActivity(ctx context.Context, limit int) (Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.projection.RecentHistory(limit)
	if err != nil {
		return Activity{}, err
	}
	return Activity{Entries: entries, Counters: s.monitor.GetMetrics()}, nil
}

// begin opens a span for operation and returns the function that closes it
// and records the outcome.
func (s *Service) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "storekeeper."+operation, trace.WithAttributes(attrs...))
	started := time.Now()
	return ctx, func(err error) {
		defer span.End()
		outcome := outcomeOf(err)
		s.metrics.RecordOperation(operation, outcome, time.Since(started).Seconds())
		s.monitor.RecordOperation(operation, outcome)

		switch outcome {
		case "ok":
			s.logger.Info().Str("operation", operation).Msg("ledger operation committed")
		case "rejected":
			span.SetAttributes(attribute.String("rejection", err.Error()))
			s.logger.Warn().Str("operation", operation).Err(err).Msg("ledger operation rejected")
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error().Str("operation", operation).Err(err).Msg("ledger operation failed")
		}
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrMissingField),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidValue),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrInvalidTransition),
		errors.Is(err, ledger.ErrItemNotFound),
		errors.Is(err, ledger.ErrRequestNotFound):
		return "rejected"
	default:
		return "error"
	}
}

// committed refreshes derived state and notifies subscribers. The ledger is
// already updated, so a read model failure is logged and not returned.
func (s *Service) committed(ctx context.Context, events ...Event) {
	if err := s.refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("read model refresh failed")
	}
	for _, ev := range events {
		s.publisher.Publish(ev)
	}
}

func (s *Service) refresh(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "storekeeper.refresh")
	defer span.End()

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	items := s.ledger.Items()
	if err := s.projection.Sync(items, s.ledger.Requests()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.Wrap(err, "sync read model")
	}
	s.metrics.ObserveInventory(items)

	counts, err := s.projection.CountRequestsByStatus()
	if err != nil {
		return errors.Wrap(err, "count requests")
	}
	s.metrics.ObserveRequests(counts)

	low := 0
	for _, item := range items {
		if item.StockLevel == models.StockLow {
			low++
		}
	}
	s.monitor.RecordMetric("low_stock_items", low)
	s.monitor.RecordMetric("total_items", len(items))
	return nil
}

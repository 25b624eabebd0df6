package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Nombres de operación usados en métricas y spans.
const (
	OpSetInitialStock = "set_initial_stock"
	OpAdjustStock     = "adjust_stock"
	OpTransferStock   = "transfer_stock"
)

// Resultados de una operación del ledger.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeNotFound     = "not_found"
	OutcomeInsufficient = "insufficient"
	OutcomeConflict     = "conflict"
	OutcomeError        = "error"
)

const initialStockReason = "Configuración inicial de stock"

// StockLedgerUseCase aplica las mutaciones de stock (carga inicial, ajuste, traslado).
// Cada operación es una única transacción: nivel(es) de stock y registro de auditoría
// se confirman juntos o no se confirma nada.
type StockLedgerUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	publisher    EventPublisher
	metrics      MetricsRecorder
	log          zerolog.Logger
	tracer       trace.Tracer

	now   func() time.Time
	newID func() string
}

// NewStockLedgerUseCase construye el caso de uso. publisher y metrics pueden ser nil.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	publisher EventPublisher,
	metrics MetricsRecorder,
	log zerolog.Logger,
) *StockLedgerUseCase {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &StockLedgerUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		publisher:    publisher,
		metrics:      metrics,
		log:          log.With().Str("component", "stock_ledger").Logger(),
		tracer:       otel.Tracer("github.com/jhoicas/stock-ledger-api/inventory"),
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:        func() string { return primitive.NewObjectID().Hex() },
	}
}

// SetInitialStockInput entrada para fijar el stock de un producto en una ubicación.
type SetInitialStockInput struct {
	ProductID  string
	LocationID string
	Quantity   int64
}

// AdjustStockInput entrada para un ajuste manual. QuantityChange lleva el signo;
// Type solo clasifica el ajuste.
type AdjustStockInput struct {
	ProductID      string
	LocationID     string
	Type           string
	QuantityChange int64
	Reason         string
	AdjustedBy     string
}

// TransferStockInput entrada para trasladar stock entre dos ubicaciones.
type TransferStockInput struct {
	ProductID      string
	FromLocationID string
	ToLocationID   string
	Quantity       int64
	RequestedBy    string
}

// SetInitialStock crea o sobrescribe el nivel de stock del par y registra un ajuste "initial"
// con la diferencia respecto a la cantidad anterior (0 si el nivel no existía).
func (uc *StockLedgerUseCase) SetInitialStock(ctx context.Context, in SetInitialStockInput) (out *dto.InitialStockResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.SetInitialStock", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("location.id", in.LocationID),
		attribute.Int64("stock.quantity", in.Quantity),
	))
	defer uc.finish(span, OpSetInitialStock, time.Now(), &err)

	if in.ProductID == "" || in.LocationID == "" || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity > entity.MaxQuantity {
		return nil, domain.ErrQuantityOutOfRange
	}
	if err := uc.ensureProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if err := uc.ensureLocation(ctx, in.LocationID, domain.ErrLocationNotFound); err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		level      *entity.StockLevel
		adjustment *entity.StockAdjustment
		created    bool
	)
	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		levelRepo repository.StockLevelRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
		_ repository.StockTransferRepository,
	) error {
		current, isNew, err := levelRepo.GetOrCreateForUpdate(ctx, &entity.StockLevel{
			ID:          uc.newID(),
			ProductID:   in.ProductID,
			LocationID:  in.LocationID,
			LastUpdated: now,
		})
		if err != nil {
			return err
		}
		previous := current.Quantity
		if err := levelRepo.UpdateQuantity(ctx, current.ID, in.Quantity, now); err != nil {
			return err
		}
		current.Quantity = in.Quantity
		current.LastUpdated = now

		adj := &entity.StockAdjustment{
			ID:             uc.newID(),
			ProductID:      in.ProductID,
			LocationID:     in.LocationID,
			Type:           entity.AdjustmentTypeInitial,
			QuantityChange: in.Quantity - previous,
			CurrentStock:   in.Quantity,
			Reason:         initialStockReason,
			Timestamp:      now,
		}
		if err := adjustmentRepo.Create(ctx, adj); err != nil {
			return err
		}
		level, adjustment, created = current, adj, isNew
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, entity.LedgerEvent{
		Type:           entity.EventInitialStockSet,
		RecordID:       adjustment.ID,
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		QuantityChange: adjustment.QuantityChange,
		CurrentStock:   level.Quantity,
		OccurredAt:     now,
	})
	return &dto.InitialStockResponse{
		StockLevel: toStockLevelResponse(level),
		Adjustment: toAdjustmentResponse(adjustment),
		Created:    created,
	}, nil
}

// AdjustStock aplica un delta con signo sobre un nivel existente. Rechaza (sin escribir nada)
// cualquier ajuste que deje la cantidad en negativo; nunca recorta a cero.
func (uc *StockLedgerUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (out *dto.AdjustStockResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.AdjustStock", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("location.id", in.LocationID),
		attribute.String("adjustment.type", in.Type),
		attribute.Int64("stock.quantity_change", in.QuantityChange),
	))
	defer uc.finish(span, OpAdjustStock, time.Now(), &err)

	if in.ProductID == "" || in.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.IsValidAdjustmentType(in.Type) || in.Type == entity.AdjustmentTypeInitial {
		return nil, domain.ErrInvalidInput
	}
	if in.QuantityChange > entity.MaxQuantity || in.QuantityChange < -entity.MaxQuantity {
		return nil, domain.ErrQuantityOutOfRange
	}
	if err := uc.ensureProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if err := uc.ensureLocation(ctx, in.LocationID, domain.ErrLocationNotFound); err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		level      *entity.StockLevel
		adjustment *entity.StockAdjustment
	)
	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		levelRepo repository.StockLevelRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
		_ repository.StockTransferRepository,
	) error {
		// La validación usa la cantidad leída con bloqueo dentro de la transacción.
		current, err := levelRepo.GetForUpdate(ctx, in.ProductID, in.LocationID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrStockLevelNotFound
		}
		if entity.ExceedsMaxQuantity(current.Quantity, in.QuantityChange) {
			return domain.ErrQuantityOutOfRange
		}
		newQty := current.Quantity + in.QuantityChange
		if newQty < 0 {
			return domain.InsufficientStock(current.Quantity, -in.QuantityChange)
		}
		if err := levelRepo.UpdateQuantity(ctx, current.ID, newQty, now); err != nil {
			return err
		}
		current.Quantity = newQty
		current.LastUpdated = now

		adj := &entity.StockAdjustment{
			ID:             uc.newID(),
			ProductID:      in.ProductID,
			LocationID:     in.LocationID,
			Type:           in.Type,
			QuantityChange: in.QuantityChange,
			CurrentStock:   newQty,
			Reason:         in.Reason,
			AdjustedBy:     in.AdjustedBy,
			Timestamp:      now,
		}
		if err := adjustmentRepo.Create(ctx, adj); err != nil {
			return err
		}
		level, adjustment = current, adj
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, entity.LedgerEvent{
		Type:           entity.EventStockAdjusted,
		RecordID:       adjustment.ID,
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		QuantityChange: in.QuantityChange,
		CurrentStock:   level.Quantity,
		OccurredAt:     now,
	})
	return &dto.AdjustStockResponse{
		StockLevel: toStockLevelResponse(level),
		Adjustment: toAdjustmentResponse(adjustment),
	}, nil
}

// TransferStock mueve Quantity unidades del origen al destino en una sola transacción:
// registra el traslado como completado, descuenta el origen y suma al destino
// (creándolo si no existe).
func (uc *StockLedgerUseCase) TransferStock(ctx context.Context, in TransferStockInput) (out *dto.TransferStockResponse, err error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.TransferStock", trace.WithAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("location.from_id", in.FromLocationID),
		attribute.String("location.to_id", in.ToLocationID),
		attribute.Int64("stock.quantity", in.Quantity),
	))
	defer uc.finish(span, OpTransferStock, time.Now(), &err)

	if in.ProductID == "" || in.FromLocationID == "" || in.ToLocationID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity > entity.MaxQuantity {
		return nil, domain.ErrQuantityOutOfRange
	}
	if in.FromLocationID == in.ToLocationID {
		return nil, domain.ErrSameLocation
	}
	if err := uc.ensureProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	if err := uc.ensureLocation(ctx, in.FromLocationID, domain.ErrFromLocationMissing); err != nil {
		return nil, err
	}
	if err := uc.ensureLocation(ctx, in.ToLocationID, domain.ErrToLocationMissing); err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		transfer *entity.StockTransfer
		source   *entity.StockLevel
		dest     *entity.StockLevel
	)
	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		levelRepo repository.StockLevelRepository,
		_ repository.StockAdjustmentRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		// Bloquear en orden de id de ubicación: dos traslados opuestos no se interbloquean.
		order := []string{in.FromLocationID, in.ToLocationID}
		sort.Strings(order)
		locked := make(map[string]*entity.StockLevel, 2)
		for _, locationID := range order {
			l, err := levelRepo.GetForUpdate(ctx, in.ProductID, locationID)
			if err != nil {
				return err
			}
			locked[locationID] = l
		}

		src := locked[in.FromLocationID]
		if src == nil {
			return domain.ErrNoSourceStock
		}
		if src.Quantity < in.Quantity {
			return domain.InsufficientStock(src.Quantity, in.Quantity)
		}
		dst := locked[in.ToLocationID]
		if dst == nil {
			var err error
			dst, _, err = levelRepo.GetOrCreateForUpdate(ctx, &entity.StockLevel{
				ID:          uc.newID(),
				ProductID:   in.ProductID,
				LocationID:  in.ToLocationID,
				LastUpdated: now,
			})
			if err != nil {
				return err
			}
		}
		if entity.ExceedsMaxQuantity(dst.Quantity, in.Quantity) {
			return domain.ErrQuantityOutOfRange
		}

		t := &entity.StockTransfer{
			ID:               uc.newID(),
			ProductID:        in.ProductID,
			FromLocationID:   in.FromLocationID,
			ToLocationID:     in.ToLocationID,
			Quantity:         in.Quantity,
			RequestTimestamp: now,
			RequestedBy:      in.RequestedBy,
		}
		t.Complete(now)
		if err := transferRepo.Create(ctx, t); err != nil {
			return err
		}

		if err := levelRepo.UpdateQuantity(ctx, src.ID, src.Quantity-in.Quantity, now); err != nil {
			return err
		}
		src.Quantity -= in.Quantity
		src.LastUpdated = now

		if err := levelRepo.UpdateQuantity(ctx, dst.ID, dst.Quantity+in.Quantity, now); err != nil {
			return err
		}
		dst.Quantity += in.Quantity
		dst.LastUpdated = now

		transfer, source, dest = t, src, dst
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, entity.LedgerEvent{
		Type:           entity.EventStockTransferred,
		RecordID:       transfer.ID,
		ProductID:      in.ProductID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Quantity:       in.Quantity,
		OccurredAt:     now,
	})
	return &dto.TransferStockResponse{
		Transfer:    toTransferResponse(transfer),
		Source:      toStockLevelResponse(source),
		Destination: toStockLevelResponse(dest),
	}, nil
}

func (uc *StockLedgerUseCase) ensureProduct(ctx context.Context, id string) error {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	return nil
}

func (uc *StockLedgerUseCase) ensureLocation(ctx context.Context, id string, notFound error) error {
	location, err := uc.locationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if location == nil {
		return notFound
	}
	return nil
}

// publish envía el evento sin afectar el resultado: la transacción ya fue confirmada.
func (uc *StockLedgerUseCase) publish(ctx context.Context, event entity.LedgerEvent) {
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.log.Warn().Err(err).
			Str("event", event.Type).
			Str("product_id", event.ProductID).
			Msg("no se pudo publicar el evento del ledger")
	}
}

func (uc *StockLedgerUseCase) finish(span trace.Span, operation string, started time.Time, errp *error) {
	outcome := Outcome(*errp)
	if err := *errp; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.String("ledger.outcome", outcome))
	span.End()
	uc.metrics.ObserveLedgerOperation(operation, outcome, time.Since(started))
}

// Outcome clasifica un error del ledger para métricas.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficient
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidState):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
)

// Task unidad de trabajo de liquidación. SaleID liquida una venta ya creada
// (camino síncrono); Request crea y liquida desde el carrito (camino asíncrono).
type Task struct {
	TrackingID string
	SaleID     string
	CompanyID  string
	Request    *dto.CreateSaleRequest
}

// Handler procesa tareas de liquidación. HandleTask debe ser idempotente con
// respecto al estado final: la cola entrega at-least-once.
type Handler interface {
	HandleTask(ctx context.Context, task Task) error
	// HandleExhausted se invoca al agotar los reintentos de una tarea.
	HandleExhausted(ctx context.Context, task Task, err error)
}

// Config parámetros del dispatcher.
type Config struct {
	Workers     int
	MaxAttempts int           // intentos por tarea (errores transitorios)
	Timeout     time.Duration // presupuesto por intento
	QueueSize   int
	Backoff     time.Duration // espera base entre reintentos (crece linealmente)
}

// Dispatcher cola de liquidación en proceso: N workers consumen un canal
// acotado con reintentos por tarea. Encolar con la cola llena bloquea
// (backpressure hacia el caller HTTP).
type Dispatcher struct {
	tasks   chan Task
	handler Handler
	cfg     Config
	log     *logger.Logger
	wg      sync.WaitGroup
	once    sync.Once
}

// NewDispatcher construye la cola. Aplica defaults seguros si cfg trae ceros.
func NewDispatcher(handler Handler, cfg Config, log *logger.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &Dispatcher{
		tasks:   make(chan Task, cfg.QueueSize),
		handler: handler,
		cfg:     cfg,
		log:     log,
	}
}

// SetHandler ata el handler después de la construcción. El handler de
// liquidación y los use cases que encolan se referencian mutuamente, así que
// uno de los dos se ata tarde. Debe llamarse antes de Start.
func (d *Dispatcher) SetHandler(h Handler) {
	d.handler = h
}

// Start lanza los workers. ctx cancela el consumo (las tareas en vuelo
// terminan su intento actual).
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

// Stop cierra la cola y espera a que los workers drenen las tareas pendientes.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.tasks) })
	d.wg.Wait()
}

// EnqueueSettle encola la liquidación de una venta existente.
func (d *Dispatcher) EnqueueSettle(saleID string) string {
	trackingID := uuid.New().String()
	d.tasks <- Task{TrackingID: trackingID, SaleID: saleID}
	return trackingID
}

// EnqueueCreate encola creación y liquidación completas desde el carrito.
func (d *Dispatcher) EnqueueCreate(companyID string, in dto.CreateSaleRequest) string {
	trackingID := uuid.New().String()
	d.tasks <- Task{TrackingID: trackingID, CompanyID: companyID, Request: &in}
	return trackingID
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-d.tasks:
			if !ok {
				return
			}
			d.process(ctx, task)
		}
	}
}

// process intenta la tarea hasta MaxAttempts veces con backoff lineal.
// Un intento que retorna nil terminó (incluye fallas de negocio ya marcadas
// como failed por el handler); solo los errores transitorios reintentan.
func (d *Dispatcher) process(ctx context.Context, task Task) {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
		err := d.handler.HandleTask(attemptCtx, task)
		cancel()
		if err == nil {
			return
		}
		lastErr = err

		d.log.Warn().
			Err(err).
			Str("tracking_id", task.TrackingID).
			Int("attempt", attempt).
			Int("max_attempts", d.cfg.MaxAttempts).
			Msg("intento de liquidación fallido")

		if attempt < d.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				d.handler.HandleExhausted(context.WithoutCancel(ctx), task, lastErr)
				return
			case <-time.After(d.cfg.Backoff * time.Duration(attempt)):
			}
		}
	}
	d.handler.HandleExhausted(context.WithoutCancel(ctx), task, lastErr)
}

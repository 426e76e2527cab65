package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
)

// ArchiveStaleUseCase desactiva los productos sin movimientos recientes de cada
// empresa activa. Lo invoca el CLI cmd/archive-stale (tarea programada).
type ArchiveStaleUseCase struct {
	ledger      *LedgerUseCase
	companyRepo repository.CompanyRepository
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewArchiveStaleUseCase construye el caso de uso.
func NewArchiveStaleUseCase(
	ledger *LedgerUseCase,
	companyRepo repository.CompanyRepository,
	productRepo repository.ProductRepository,
	log *logger.Logger,
) *ArchiveStaleUseCase {
	return &ArchiveStaleUseCase{
		ledger:      ledger,
		companyRepo: companyRepo,
		productRepo: productRepo,
		log:         log,
	}
}

// Run recorre las empresas activas y desactiva sus productos obsoletos.
// Devuelve el total de productos desactivados.
func (uc *ArchiveStaleUseCase) Run(ctx context.Context, daysOld int) (int, error) {
	companies, err := uc.companyRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, company := range companies {
		stale, err := uc.ledger.GetStaleProducts(ctx, company.ID, daysOld)
		if err != nil {
			return total, err
		}
		if len(stale) == 0 {
			continue
		}

		uc.log.Info().
			Str("company_id", company.ID).
			Str("company", company.Name).
			Int("stale_products", len(stale)).
			Msg("productos sin rotación encontrados")

		for _, product := range stale {
			if err := uc.productRepo.Deactivate(ctx, product.ID); err != nil {
				return total, err
			}
			uc.log.Info().
				Str("sku", product.SKU).
				Str("name", product.Name).
				Msg("producto desactivado")
			total++
		}

		// El snapshot cacheado incluye solo productos activos; quedó viejo.
		uc.ledger.cache.Invalidate(ctx, company.ID)
	}
	return total, nil
}

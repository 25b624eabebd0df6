package memory

import (
	"fmt"

	memdb "github.com/hashicorp/go-memdb"
)

// Nombres de tablas e índices del motor en memoria.
const (
	tableProducts    = "products"
	tableLocations   = "locations"
	tableLevels      = "stock_levels"
	tableAdjustments = "stock_adjustments"
	tableTransfers   = "stock_transfers"

	indexID       = "id"
	indexSKU      = "sku"
	indexName     = "name"
	indexPair     = "pair"
	indexProduct  = "product"
	indexLocation = "location"
)

// Store motor de almacenamiento en memoria sobre go-memdb (MVCC, un único escritor a la vez).
// Pensado para desarrollo local y pruebas: los datos se pierden al reiniciar.
type Store struct {
	db *memdb.MemDB
}

// NewStore crea el esquema y la base en memoria.
func NewStore() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("crear memdb: %w", err)
	}
	return &Store{db: db}, nil
}

// MustNewStore como NewStore pero entra en pánico si el esquema es inválido (tests).
func MustNewStore() *Store {
	s, err := NewStore()
	if err != nil {
		panic(err)
	}
	return s
}

func idIndex() *memdb.IndexSchema {
	return &memdb.IndexSchema{Name: indexID, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProducts: {
				Name: tableProducts,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:   idIndex(),
					indexSKU:  {Name: indexSKU, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "SKU"}},
					indexName: {Name: indexName, Indexer: &memdb.StringFieldIndex{Field: "Name"}},
				},
			},
			tableLocations: {
				Name: tableLocations,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:   idIndex(),
					indexName: {Name: indexName, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Name"}},
				},
			},
			tableLevels: {
				Name: tableLevels,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: idIndex(),
					indexPair: {
						Name:   indexPair,
						Unique: true,
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "ProductID"},
							&memdb.StringFieldIndex{Field: "LocationID"},
						}},
					},
					indexProduct:  {Name: indexProduct, Indexer: &memdb.StringFieldIndex{Field: "ProductID"}},
					indexLocation: {Name: indexLocation, Indexer: &memdb.StringFieldIndex{Field: "LocationID"}},
				},
			},
			tableAdjustments: {
				Name: tableAdjustments,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:      idIndex(),
					indexProduct: {Name: indexProduct, Indexer: &memdb.StringFieldIndex{Field: "ProductID"}},
				},
			},
			tableTransfers: {
				Name: tableTransfers,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:      idIndex(),
					indexProduct: {Name: indexProduct, Indexer: &memdb.StringFieldIndex{Field: "ProductID"}},
				},
			},
		},
	}
}

// scope decide sobre qué transacción opera un repositorio: la de escritura abierta por
// TxRunner, o una propia por llamada cuando el repositorio se usa fuera de transacción.
type scope struct {
	db  *memdb.MemDB
	txn *memdb.Txn
}

func (s scope) view(fn func(txn *memdb.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	txn := s.db.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

func (s scope) update(fn func(txn *memdb.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *Store) scope() scope {
	return scope{db: s.db}
}

// Repositorios fuera de transacción.

func (s *Store) Products() *ProductRepo            { return &ProductRepo{s: s.scope()} }
func (s *Store) Locations() *LocationRepo          { return &LocationRepo{s: s.scope()} }
func (s *Store) StockLevels() *StockLevelRepo      { return &StockLevelRepo{s: s.scope()} }
func (s *Store) Adjustments() *StockAdjustmentRepo { return &StockAdjustmentRepo{s: s.scope()} }
func (s *Store) Transfers() *StockTransferRepo     { return &StockTransferRepo{s: s.scope()} }

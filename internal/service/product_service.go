package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/tax"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	barcodePrefix   = "869"
	barcodeAttempts = 50
)

type CreateProductRequest struct {
	Barcode   string          `json:"barcode" validate:"required,max=64"`
	Name      string          `json:"name" validate:"required,max=255"`
	Category  string          `json:"category" validate:"max=100"`
	Brand     string          `json:"brand" validate:"max=100"`
	Stock     int             `json:"stock" validate:"min=0"`
	MinStock  int             `json:"min_stock" validate:"min=0"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	TaxRate   int             `json:"tax_rate" validate:"min=0,max=100"`
	Supplier  *string         `json:"supplier,omitempty" validate:"omitempty,max=255"`
}

// productPatchKeys are the columns a catalog edit may touch. Stock only
// moves through sales and stock movements.
var productPatchKeys = []string{
	"barcode", "name", "category", "brand", "min_stock",
	"buy_price", "sell_price", "tax_rate", "supplier",
}

type ProductService interface {
	CreateProduct(ctx context.Context, req *CreateProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch model.Patch, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	ListProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)
	GenerateBarcode(ctx context.Context) (string, error)
}

type productService struct {
	products repository.ProductRepository
	log      *zap.Logger
	digit    func() int
}

func NewProductService(products repository.ProductRepository, log *zap.Logger) ProductService {
	return &productService{
		products: products,
		log:      log,
		digit:    func() int { return rand.IntN(10) },
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *CreateProductRequest, actor Actor) (*model.Product, error) {
	req.Barcode = strings.TrimSpace(req.Barcode)
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Validate(req); err != nil {
		return nil, invalid("%v", err)
	}
	if req.BuyPrice.IsNegative() || req.SellPrice.IsNegative() {
		return nil, invalid("prices must not be negative")
	}

	normalized := model.NormalizeName(req.Name)
	if normalized == "" {
		return nil, invalid("name must contain letters or digits")
	}
	if err := s.ensureUnique(ctx, req.Barcode, normalized, uuid.Nil); err != nil {
		return nil, err
	}

	product := &model.Product{
		Barcode:        req.Barcode,
		Name:           req.Name,
		NormalizedName: normalized,
		Category:       strings.TrimSpace(req.Category),
		Brand:          strings.TrimSpace(req.Brand),
		Stock:          req.Stock,
		MinStock:       req.MinStock,
		BuyPrice:       tax.Round2(req.BuyPrice),
		SellPrice:      tax.Round2(req.SellPrice),
		TaxRate:        req.TaxRate,
		Supplier:       req.Supplier,
	}
	product.CreatedBy = actor.UserID.String()
	product.UpdatedBy = actor.UserID.String()

	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateProduct
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ensureUnique(ctx context.Context, barcode, normalized string, self uuid.UUID) error {
	if barcode != "" {
		existing, err := s.products.FindByBarcode(ctx, barcode)
		switch {
		case err == nil && existing.ID != self:
			return ErrDuplicateBarcode
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	if normalized != "" {
		_, err := s.products.FindByNormalizedName(ctx, normalized, self)
		switch {
		case err == nil:
			return ErrDuplicateName
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	return nil
}

// UpdateProduct applies a sparse patch. Keys that are absent stay as they
// are; "supplier": null clears the supplier.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, patch model.Patch, actor Actor) (*model.Product, error) {
	if patch.Has("stock") {
		return nil, invalid("stock can only change through sales and stock movements")
	}
	if unknown := patch.Unknown(productPatchKeys...); len(unknown) > 0 {
		return nil, invalid("unknown fields: %s", strings.Join(unknown, ", "))
	}

	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	var barcode, normalized string

	if patch.Has("barcode") {
		if err := patch.Decode("barcode", &barcode); err != nil {
			return nil, invalid("%v", err)
		}
		barcode = strings.TrimSpace(barcode)
		if barcode == "" || len(barcode) > 64 {
			return nil, invalid("barcode must be 1-64 characters")
		}
		fields["barcode"] = barcode
	}
	if patch.Has("name") {
		var name string
		if err := patch.Decode("name", &name); err != nil {
			return nil, invalid("%v", err)
		}
		name = strings.TrimSpace(name)
		normalized = model.NormalizeName(name)
		if normalized == "" || len(name) > 255 {
			return nil, invalid("name must be 1-255 characters")
		}
		fields["name"] = name
		fields["normalized_name"] = normalized
	}
	for _, key := range []string{"category", "brand"} {
		if !patch.Has(key) {
			continue
		}
		var v string
		if err := patch.Decode(key, &v); err != nil {
			return nil, invalid("%v", err)
		}
		fields[key] = strings.TrimSpace(v)
	}
	if patch.Has("min_stock") {
		var v int
		if err := patch.Decode("min_stock", &v); err != nil || v < 0 {
			return nil, invalid("min_stock must be a non-negative integer")
		}
		fields["min_stock"] = v
	}
	if patch.Has("tax_rate") {
		var v int
		if err := patch.Decode("tax_rate", &v); err != nil || v < 0 || v > 100 {
			return nil, invalid("tax_rate must be between 0 and 100")
		}
		fields["tax_rate"] = v
	}
	for _, key := range []string{"buy_price", "sell_price"} {
		if !patch.Has(key) {
			continue
		}
		var v decimal.Decimal
		if err := patch.Decode(key, &v); err != nil || v.IsNegative() {
			return nil, invalid("%s must be a non-negative amount", key)
		}
		fields[key] = tax.Round2(v)
	}
	if patch.Has("supplier") {
		if patch.IsNull("supplier") {
			fields["supplier"] = nil
		} else {
			var v string
			if err := patch.Decode("supplier", &v); err != nil {
				return nil, invalid("%v", err)
			}
			fields["supplier"] = strings.TrimSpace(v)
		}
	}

	if len(fields) == 0 {
		return current, nil
	}
	if barcode == current.Barcode {
		barcode = ""
	}
	if err := s.ensureUnique(ctx, barcode, normalized, id); err != nil {
		return nil, err
	}

	fields["updated_by"] = actor.UserID.String()
	if err := s.products.Update(ctx, id, fields); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateProduct
		}
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	p, err := s.products.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *productService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.Limit = repository.ClampLimit(f.Limit, 100, 1000)
	return s.products.List(ctx, f)
}

// GenerateBarcode returns an unused EAN-13 code in the Turkish GS1 range.
func (s *productService) GenerateBarcode(ctx context.Context) (string, error) {
	for i := 0; i < barcodeAttempts; i++ {
		code := s.ean13()
		_, err := s.products.FindByBarcode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	s.log.Warn("barcode generation exhausted", zap.Int("attempts", barcodeAttempts))
	return "", ErrBarcodeExhausted
}

func (s *productService) ean13() string {
	var b strings.Builder
	b.WriteString(barcodePrefix)
	for b.Len() < 12 {
		b.WriteByte(byte('0' + s.digit()))
	}
	body := b.String()
	return body + string(rune('0'+EAN13CheckDigit(body)))
}

// EAN13CheckDigit computes the check digit for the first 12 digits.
func EAN13CheckDigit(first12 string) int {
	sum := 0
	for i, r := range first12 {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

// IsValidEAN13 reports whether code is 13 digits with a correct check digit.
func IsValidEAN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return fmt.Sprint(EAN13CheckDigit(code[:12])) == code[12:]
}

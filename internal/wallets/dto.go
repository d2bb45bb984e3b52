package wallets

import (
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletDTO is the API projection of a wallet.
type WalletDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Address   string          `json:"address"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CreateWalletInput is the payload for registering a wallet.
type CreateWalletInput struct {
	Name    string           `json:"name" validate:"omitempty,max=100"`
	Address string           `json:"address" validate:"required"`
	Balance *decimal.Decimal `json:"balance"`
}

// UpdateWalletInput carries optional wallet changes.
type UpdateWalletInput struct {
	Name    *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Address *string          `json:"address"`
	Balance *decimal.Decimal `json:"balance"`
}

func FromModel(w *models.Wallet) *WalletDTO {
	if w == nil {
		return nil
	}
	return &WalletDTO{
		ID:        w.ID,
		UserID:    w.UserID,
		Name:      w.Name,
		Address:   w.Address,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func FromModels(rows []models.Wallet) []WalletDTO {
	out := make([]WalletDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

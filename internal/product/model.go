package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryPlants      Category = "plants"
	CategoryMedicines   Category = "medicines"
	CategoryTools       Category = "tools"
	CategoryFertilizers Category = "fertilizers"
)

var Categories = []Category{CategoryPlants, CategoryMedicines, CategoryTools, CategoryFertilizers}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

const MaxImages = 5

type Product struct {
	ID          uint
	Name        string
	Description string
	Price       decimal.Decimal
	Category    Category
	Stock       int
	Image       *string
	Images      []Image
	OwnerID     *uint
	Owner       *Owner
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Owner is the subset of the owning user shown alongside a product.
type Owner struct {
	FirstName string
	LastName  string
	Email     string
}

type Image struct {
	ID        uint      `json:"id"`
	ImageURL  string    `json:"image_url"`
	PublicID  *string   `json:"public_id"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type Filter struct {
	Category string
	OwnerID  *uint
}

// Input is the body of create, update and partial update requests.
// A nil ImageURLs means the gallery was not sent.
type Input struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
	Image       *string          `json:"image"`
	ImageURLs   *[]string        `json:"image_urls"`
}

type Response struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Category    Category  `json:"category"`
	Stock       int       `json:"stock"`
	Image       *string   `json:"image"`
	Images      []Image   `json:"images"`
	Owner       *uint     `json:"owner"`
	OwnerName   string    `json:"owner_name"`
	OwnerEmail  string    `json:"owner_email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

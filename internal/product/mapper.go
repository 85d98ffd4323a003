package product

const (
	anonymousOwnerName  = "Anonymous"
	anonymousOwnerEmail = "no-email@example.com"
)

func ToResponse(p *Product) Response {
	images := p.Images
	if images == nil {
		images = []Image{}
	}

	res := Response{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Category:    p.Category,
		Stock:       p.Stock,
		Image:       p.Image,
		Images:      images,
		Owner:       p.OwnerID,
		OwnerName:   anonymousOwnerName,
		OwnerEmail:  anonymousOwnerEmail,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if p.OwnerID != nil && p.Owner != nil {
		res.OwnerEmail = p.Owner.Email
		if p.Owner.FirstName != "" {
			res.OwnerName = p.Owner.FirstName + " " + p.Owner.LastName
		} else {
			res.OwnerName = p.Owner.Email
		}
	}

	return res
}

func ToResponses(products []Product) []Response {
	out := make([]Response, 0, len(products))
	for i := range products {
		out = append(out, ToResponse(&products[i]))
	}
	return out
}

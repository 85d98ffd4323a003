package order

func ToResponse(o *Order) Response {
	return Response{
		ID:              o.ID,
		Product:         o.ProductID,
		ProductName:     o.ProductName,
		ProductImage:    o.ProductImage,
		Buyer:           o.BuyerID,
		BuyerEmail:      o.BuyerEmail,
		Seller:          o.SellerID,
		SellerEmail:     o.SellerEmail,
		Quantity:        o.Quantity,
		TotalPrice:      o.TotalPrice.StringFixed(2),
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func ToResponses(orders []Order) []Response {
	out := make([]Response, 0, len(orders))
	for i := range orders {
		out = append(out, ToResponse(&orders[i]))
	}
	return out
}

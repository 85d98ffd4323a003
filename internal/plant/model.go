package plant

type Plant struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Species     string  `json:"species"`
	Age         int     `json:"age"`
	Height      float64 `json:"height"`
	Width       float64 `json:"width"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// Input is the body of create and update requests; nil fields are absent.
type Input struct {
	Name        *string  `json:"name"`
	Species     *string  `json:"species"`
	Age         *int     `json:"age"`
	Height      *float64 `json:"height"`
	Width       *float64 `json:"width"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
}

func (in Input) applyTo(p *Plant) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Species != nil {
		p.Species = *in.Species
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if in.Width != nil {
		p.Width = *in.Width
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Image != nil {
		if *in.Image == "" {
			p.Image = nil
		} else {
			p.Image = in.Image
		}
	}
}

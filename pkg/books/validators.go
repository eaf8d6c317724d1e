package books

type ListBooksQuery struct {
	Limit     int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset    int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Title     *string `query:"title" json:"title,omitempty" validate:"omitempty,max=300"`
	ReadState *string `query:"read_state" json:"read_state,omitempty" validate:"omitempty,oneof=to_read reading finished"`
	Sort      string  `query:"sort" json:"sort,omitempty" validate:"omitempty,oneof=title_asc title_desc"`
}

type UpdateBookPayload struct {
	Title    *string  `json:"title,omitempty" validate:"omitempty,max=300"`
	Subtitle *string  `json:"subtitle,omitempty" validate:"omitempty,max=500"`
	Authors  []string `json:"authors,omitempty" validate:"omitempty,dive,max=200"`
	Rating   *int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Notes    *string  `json:"notes,omitempty" validate:"omitempty,max=10000"`
}

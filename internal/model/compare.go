package model

// CompareQuery — параметры запроса сравнения цен
// теги validate проверяются на входе HTTP-хэндлера
type CompareQuery struct {
	Center      Point
	RadiusMiles float64 `validate:"gt=0,lte=250"`
	Stores      int     `validate:"min=1,max=20"`
	Rows        int     `validate:"min=1,max=200"`
}

// Validate проверяет корректность запроса
func (q *CompareQuery) Validate() error {
	return validate.Struct(q)
}

// CompareResult — ответ на запрос сравнения
type CompareResult struct {
	Stores []StoreWithDistance `json:"stores"`
	Items  []RankedItem        `json:"items"`
}

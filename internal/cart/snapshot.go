package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	myErr "storefront/internal/types/errors"

	"github.com/shopspring/decimal"
)

// верхняя граница количества в одной позиции снимка, защищает от переполнения int
const maxLineQuantity = 1 << 31

// snapshotLine - формат позиции в сохранённом снимке
type snapshotLine struct {
	ID       string      `json:"$id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Image    string      `json:"image"`
	Quantity int         `json:"quantity"`
}

// storedLine - позиция снимка при чтении. Цена и количество разбираются
// отдельно, чтобы одна битая позиция не портила весь снимок.
type storedLine struct {
	ID       string          `json:"$id"`
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"`
	Image    string          `json:"image"`
	Quantity json.RawMessage `json:"quantity"`
}

// DecodeResult - результат разбора снимка.
// При Err != nil корзина должна начинаться пустой.
type DecodeResult struct {
	Lines   []LineItem
	Skipped int
	Err     error
}

// OK - снимок разобран успешно
func (r DecodeResult) OK() bool {
	return r.Err == nil
}

// EncodeSnapshot сериализует позиции в формат слота "cart"
func EncodeSnapshot(lines []LineItem) (string, error) {
	out := make([]snapshotLine, 0, len(lines))
	for _, li := range lines {
		out = append(out, snapshotLine{
			ID:       li.ID,
			Name:     li.Name,
			Price:    json.Number(li.UnitPrice.String()),
			Image:    li.Image,
			Quantity: li.Quantity,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode cart snapshot: %w", err)
	}

	return string(data), nil
}

// DecodeSnapshot разбирает снимок корзины.
// Позиции без id, с нецелым или меньше 1 количеством, с некорректной ценой
// или неверными типами полей пропускаются. Повторяющиеся id склеиваются
// с суммированием количества. Весь снимок отбрасывается, только если это не JSON-массив.
func DecodeSnapshot(raw string) DecodeResult {
	if strings.TrimSpace(raw) == "" {
		return DecodeResult{}
	}

	var in []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return DecodeResult{Err: fmt.Errorf("%w: %v", myErr.ErrMalformedSnapshot, err)}
	}

	var res DecodeResult
	index := make(map[string]int, len(in))
	for _, item := range in {
		li, ok := decodeLine(item)
		if !ok {
			res.Skipped++
			continue
		}

		if i, ok := index[li.ID]; ok {
			res.Lines[i].Quantity += li.Quantity
			continue
		}

		index[li.ID] = len(res.Lines)
		res.Lines = append(res.Lines, li)
	}

	return res
}

func decodeLine(item json.RawMessage) (LineItem, bool) {
	var sl storedLine
	if err := json.Unmarshal(item, &sl); err != nil || sl.ID == "" {
		return LineItem{}, false
	}

	// строки, null и отсутствующие значения сюда не проходят
	price, err := decimal.NewFromString(string(sl.Price))
	if err != nil || price.IsNegative() {
		return LineItem{}, false
	}

	// 2.0 допустимо, 1.5 нет
	qty, err := decimal.NewFromString(string(sl.Quantity))
	if err != nil || !qty.IsInteger() || qty.LessThan(decimal.NewFromInt(1)) || qty.GreaterThan(decimal.NewFromInt(maxLineQuantity)) {
		return LineItem{}, false
	}

	return LineItem{
		ID:        sl.ID,
		Name:      sl.Name,
		UnitPrice: price,
		Image:     sl.Image,
		Quantity:  int(qty.IntPart()),
	}, true
}

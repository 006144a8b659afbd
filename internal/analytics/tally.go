package analytics

import (
	"sort"

	"github.com/OldStager01/car-analytics/pkg/models"
)

// tally counts values and remembers the order in which each was first
// seen, which breaks ties between equal counts.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(v string) {
	if _, ok := t.counts[v]; !ok {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

func (t *tally) distinct() int {
	return len(t.order)
}

// top returns the n most frequent values, or all of them when n <= 0.
func (t *tally) top(n int) []models.CountEntry {
	entries := make([]models.CountEntry, 0, len(t.order))
	for _, v := range t.order {
		entries = append(entries, models.CountEntry{Value: v, Total: t.counts[v]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

type pair struct {
	brand string
	card  string
}

type pairTally struct {
	order  []pair
	counts map[pair]int
}

func newPairTally() *pairTally {
	return &pairTally{counts: make(map[pair]int)}
}

func (t *pairTally) add(brand, card string) {
	p := pair{brand: brand, card: card}
	if _, ok := t.counts[p]; !ok {
		t.order = append(t.order, p)
	}
	t.counts[p]++
}

// usage orders cells by brand, then by count descending. Cells with equal
// brand and count keep first-seen order.
func (t *pairTally) usage() []models.CardUsage {
	cells := make([]models.CardUsage, 0, len(t.order))
	for _, p := range t.order {
		cells = append(cells, models.CardUsage{
			CarBrand:       p.brand,
			CreditCardType: p.card,
			Total:          t.counts[p],
		})
	}

	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].CarBrand != cells[j].CarBrand {
			return cells[i].CarBrand < cells[j].CarBrand
		}
		return cells[i].Total > cells[j].Total
	})
	return cells
}

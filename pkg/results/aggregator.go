package results

import (
	"github.com/backsoul/partygames/pkg/models"
	"github.com/backsoul/partygames/pkg/scoring"
)

// Aggregator acumula los resultados por ronda y produce la clasificación
type Aggregator struct {
	history []models.RoundResult
	stats   map[int]*models.GameStanding
	metrics map[int]*metricTally
	order   []int
}

// metricTally suma la métrica de cada modo para los promedios
type metricTally struct {
	votes, votesRounds float64
	rates, rateRounds  float64
}

// NewAggregator crea un acumulador vacío
func NewAggregator() *Aggregator {
	return &Aggregator{
		stats:   make(map[int]*models.GameStanding),
		metrics: make(map[int]*metricTally),
	}
}

// Record agrega el resultado al historial y actualiza los totales
func (a *Aggregator) Record(result models.RoundResult) {
	result = cloneResult(result)
	a.history = append(a.history, result)

	for _, p := range result.Players {
		st, ok := a.stats[p.Index]
		if !ok {
			st = &models.GameStanding{Index: p.Index, Best: p.Score}
			a.stats[p.Index] = st
			a.metrics[p.Index] = &metricTally{}
			a.order = append(a.order, p.Index)
		}
		if p.Name != "" {
			st.Name = p.Name
		}
		st.Total += p.Score
		st.RoundsSeen++
		if p.Score > st.Best {
			st.Best = p.Score
		}
		st.Last = p.Score
		st.Average = float64(st.Total) / float64(st.RoundsSeen)
		if p.Answered {
			st.RoundsAnswered++
		}
		st.Participation = float64(st.RoundsAnswered) / float64(st.RoundsSeen) * 100
		a.recordMetric(result.Mode, st, a.metrics[p.Index], p.Metric)
	}
}

// recordMetric actualiza votos o coincidencia según el modo de la ronda
func (a *Aggregator) recordMetric(mode models.GameMode, st *models.GameStanding, tally *metricTally, metric float64) {
	switch mode {
	case models.ModeNormal:
		tally.votes += metric
		tally.votesRounds++
		st.AverageVotes = tally.votes / tally.votesRounds
		if metric > st.BestVotes {
			st.BestVotes = metric
		}
	case models.ModeSelection:
		tally.rates += metric
		tally.rateRounds++
		st.AverageMatchRate = tally.rates / tally.rateRounds
		if metric > st.BestMatchRate {
			st.BestMatchRate = metric
		}
	}
}

// Standings devuelve la clasificación ordenada
func (a *Aggregator) Standings() []models.GameStanding {
	list := make([]models.GameStanding, 0, len(a.order))
	for _, index := range a.order {
		list = append(list, *a.stats[index])
	}
	return scoring.Rank(list)
}

// Winners devuelve hasta n jugadores de la clasificación con puntaje positivo
func (a *Aggregator) Winners(n int) []models.GameStanding {
	winners := make([]models.GameStanding, 0, n)
	for _, st := range a.Standings() {
		if len(winners) == n {
			break
		}
		if st.Total > 0 {
			winners = append(winners, st)
		}
	}
	return winners
}

// Total devuelve el puntaje acumulado de un jugador
func (a *Aggregator) Total(index int) int {
	if st, ok := a.stats[index]; ok {
		return st.Total
	}
	return 0
}

// History devuelve una copia del historial en orden de ronda
func (a *Aggregator) History() []models.RoundResult {
	out := make([]models.RoundResult, len(a.history))
	for i, r := range a.history {
		out[i] = cloneResult(r)
	}
	return out
}

// Rounds cantidad de rondas registradas
func (a *Aggregator) Rounds() int {
	return len(a.history)
}

// Reset borra historial y totales
func (a *Aggregator) Reset() {
	a.history = nil
	a.stats = make(map[int]*models.GameStanding)
	a.metrics = make(map[int]*metricTally)
	a.order = nil
}

// Restore reconstruye el acumulador a partir de un historial persistido
func (a *Aggregator) Restore(history []models.RoundResult) {
	a.Reset()
	for _, r := range history {
		a.Record(r)
	}
}

func cloneResult(r models.RoundResult) models.RoundResult {
	players := make([]models.PlayerRoundResult, len(r.Players))
	copy(players, r.Players)
	r.Players = players
	return r
}

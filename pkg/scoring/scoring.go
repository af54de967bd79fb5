// Package scoring contiene las reglas de puntuación de cada variante.
// Todas las funciones son puras: reciben el contenido del ledger ya cerrado
// y devuelven resultados neutros cuando las colecciones están vacías.
package scoring

import (
	"math"
	"sort"

	"github.com/backsoul/partygames/pkg/models"
)

const (
	// ParentPoints se otorga al padre cuando su casilla gana la votación
	ParentPoints = 3
	// OwnerPoints se otorga al dueño de la casilla ganadora
	OwnerPoints = 2
	// PointsPerTarget es el presupuesto por cada otro jugador en Name Crafter
	PointsPerTarget = 100
)

// TriviaScore calcula el puntaje de una respuesta de trivia.
// La respuesta correcta siempre es el índice 0.
func TriviaScore(choice int, fraction float64, points, timeBonus int) int {
	if choice != 0 {
		return 0
	}
	return points + int(math.Floor(float64(timeBonus)*clamp(fraction)))
}

// ScoreTrivia aplica TriviaScore a todas las elecciones de la ronda
func ScoreTrivia(choices map[int]models.Submission, points, timeBonus int) map[int]int {
	scores := make(map[int]int, len(choices))
	for index, sub := range choices {
		scores[index] = TriviaScore(sub.Choice, sub.Fraction, points, timeBonus)
	}
	return scores
}

// DeductionOutcome es el recuento de una ronda de deducción
type DeductionOutcome struct {
	// Votes por casilla
	Votes []int
	// WinningSlot es -1 cuando nadie votó
	WinningSlot int
	// Points otorgados por jugador
	Points map[int]int
	// Received son los votos recibidos por la casilla de cada jugador
	Received map[int]int
}

// TallyDeduction cuenta los votos (votante -> casilla) y decide la casilla ganadora.
// En empate gana la casilla de menor índice.
func TallyDeduction(slots []models.Slot, votes map[int]int, parent int) DeductionOutcome {
	out := DeductionOutcome{
		Votes:       make([]int, len(slots)),
		WinningSlot: -1,
		Points:      make(map[int]int),
		Received:    make(map[int]int),
	}

	for _, slot := range votes {
		if slot < 0 || slot >= len(slots) {
			continue
		}
		out.Votes[slot]++
	}

	best := 0
	for i, n := range out.Votes {
		if owner := slots[i].Owner; owner >= 0 {
			out.Received[owner] += n
		}
		if n > best {
			best = n
			out.WinningSlot = i
		}
	}

	if out.WinningSlot < 0 {
		return out
	}

	owner := slots[out.WinningSlot].Owner
	switch {
	case owner < 0:
		// la respuesta oculta no otorga puntos
	case owner == parent:
		out.Points[parent] += ParentPoints
	default:
		out.Points[owner] += OwnerPoints
	}
	return out
}

// Budget es el total que cada votante reparte entre los demás
func Budget(participants int) int {
	if participants < 2 {
		return 0
	}
	return (participants - 1) * PointsPerTarget
}

// AllocationTotal suma un reparto
func AllocationTotal(allocations map[int]int) int {
	total := 0
	for _, points := range allocations {
		total += points
	}
	return total
}

// AutoDistribute reparte el presupuesto completo en partes iguales entre los
// jugadores que respondieron, excluyendo al votante. El resto se descarta.
func AutoDistribute(voter int, answered []int, budget int) map[int]int {
	targets := make([]int, 0, len(answered))
	for _, index := range answered {
		if index != voter {
			targets = append(targets, index)
		}
	}

	dist := make(map[int]int, len(targets))
	if len(targets) == 0 || budget <= 0 {
		return dist
	}
	share := budget / len(targets)
	for _, target := range targets {
		dist[target] = share
	}
	return dist
}

// CompleteVoters devuelve los repartos finales de cada votante. Un votante que no
// completó el presupuesto recibe un reparto automático nuevo.
func CompleteVoters(voters []int, allocations map[int]map[int]int, answered []int, budget int) map[int]map[int]int {
	final := make(map[int]map[int]int, len(voters))
	for _, voter := range voters {
		alloc := allocations[voter]
		if AllocationTotal(alloc) == budget {
			cp := make(map[int]int, len(alloc))
			for target, points := range alloc {
				cp[target] = points
			}
			final[voter] = cp
			continue
		}
		final[voter] = AutoDistribute(voter, answered, budget)
	}
	return final
}

// NormalOutcome es el resultado del modo normal de Name Crafter
type NormalOutcome struct {
	Received map[int]int
	Total    int
	Average  float64
	// MostPopular es el índice con más puntos recibidos, -1 si nadie recibió
	MostPopular int
}

// ScoreNormal suma los puntos recibidos por cada participante
func ScoreNormal(participants []int, allocations map[int]map[int]int) NormalOutcome {
	out := NormalOutcome{Received: make(map[int]int, len(participants)), MostPopular: -1}
	if len(participants) == 0 {
		return out
	}

	ordered := sortedCopy(participants)
	for _, target := range ordered {
		received := 0
		for voter, alloc := range allocations {
			if voter == target {
				continue
			}
			received += alloc[target]
		}
		out.Received[target] = received
		out.Total += received
	}

	best := 0
	for _, target := range ordered {
		if out.Received[target] > best {
			best = out.Received[target]
			out.MostPopular = target
		}
	}
	out.Average = float64(out.Total) / float64(len(participants))
	return out
}

// SelectionOutcome es el resultado del modo selección
type SelectionOutcome struct {
	Rates   map[int]float64
	Scores  map[int]int
	Average float64
	Highest float64
}

// ScoreSelection calcula el porcentaje de coincidencia de cada participante con
// los demás que eligieron alguna opción. Sin comparaciones el puntaje es 0.
func ScoreSelection(participants []int, choices map[int]int) SelectionOutcome {
	out := SelectionOutcome{
		Rates:  make(map[int]float64, len(participants)),
		Scores: make(map[int]int, len(participants)),
	}
	if len(participants) == 0 {
		return out
	}

	total := 0.0
	for _, p := range participants {
		mine, chose := choices[p]
		matches, comparisons := 0, 0
		if chose {
			for _, other := range participants {
				if other == p {
					continue
				}
				theirs, ok := choices[other]
				if !ok {
					continue
				}
				comparisons++
				if theirs == mine {
					matches++
				}
			}
		}

		rate := 0.0
		if comparisons > 0 {
			rate = float64(matches) / float64(comparisons) * 100
		}
		out.Rates[p] = rate
		out.Scores[p] = int(math.Round(rate))
		total += rate
		if rate > out.Highest {
			out.Highest = rate
		}
	}
	out.Average = total / float64(len(participants))
	return out
}

// Rank ordena la clasificación por total, promedio, mejor ronda y última ronda.
// Los empates completos conservan el orden de entrada.
func Rank(standings []models.GameStanding) []models.GameStanding {
	ranked := make([]models.GameStanding, len(standings))
	copy(ranked, standings)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if a.Best != b.Best {
			return a.Best > b.Best
		}
		return a.Last > b.Last
	})

	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

func clamp(f float64) float64 {
	switch {
	case f < 0 || math.IsNaN(f):
		return 0
	case f > 1:
		return 1
	}
	return f
}

func sortedCopy(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	sort.Ints(out)
	return out
}

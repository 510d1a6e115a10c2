package loadtest

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/sheet"
)

const firstSail = 100

// Generate builds a random regatta sheet. Equal seeds give equal sheets and
// every race has at least one finisher.
func Generate(cfg *Config) *sheet.Sheet {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	sh := &sheet.Sheet{
		Regatta: sheet.Regatta{
			Name:     fmt.Sprintf("Load Test %d", cfg.Seed),
			Location: "Filby",
			Date:     time.Now().UTC().Format(time.DateOnly),
		},
		Skippers: make([]sheet.Skipper, cfg.Skippers),
		Races:    make([]sheet.Race, cfg.Races),
	}
	for i := range sh.Skippers {
		sh.Skippers[i] = sheet.Skipper{
			ID:   fmt.Sprintf("s%03d", i+1),
			Name: fmt.Sprintf("Skipper %03d", i+1),
			Sail: strconv.Itoa(firstSail + i),
		}
	}

	for i := range sh.Races {
		var race sheet.Race
		for _, j := range rng.Perm(cfg.Skippers) {
			id := sh.Skippers[j].ID
			if rng.Float64() >= cfg.AbsentRate {
				race.Finish = append(race.Finish, id)
				continue
			}
			if race.Status == nil {
				race.Status = make(map[string]string)
			}
			status := model.StatusDNS
			if rng.IntN(2) == 1 {
				status = model.StatusDNF
			}
			race.Status[id] = string(status)
		}
		if len(race.Finish) == 0 && cfg.Skippers > 0 {
			id := sh.Skippers[rng.IntN(cfg.Skippers)].ID
			delete(race.Status, id)
			race.Finish = []string{id}
		}
		sh.Races[i] = race
	}
	return sh
}

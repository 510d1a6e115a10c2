package sheet

// demoRaces is the race count of the demo regatta.
const demoRaces = 9

// Demo returns the Filby test regatta: nine skippers, nine races, Neil
// Johnson DNS in race 1 and Ivy King DNF in race 2. Finishing orders are a
// fixed rotation of the roster so the standings are reproducible.
func Demo() *Sheet {
	s := &Sheet{
		Regatta: Regatta{Name: "Test Regatta", Location: "Filby", Date: "2025-04-19"},
		Skippers: []Skipper{
			{ID: "neil", Name: "Neil Johnson", Sail: "01"},
			{ID: "ivy", Name: "Ivy King", Sail: "110"},
			{ID: "diana", Name: "Diana Clark", Sail: "105"},
			{ID: "frank", Name: "Frank Walker", Sail: "107"},
			{ID: "charlie", Name: "Charlie Harris", Sail: "104"},
			{ID: "trevor", Name: "Trevor Brown", Sail: "31"},
			{ID: "eve", Name: "Eve Lewis", Sail: "106"},
			{ID: "alice", Name: "Alice Davis", Sail: "102"},
			{ID: "john", Name: "John Smith", Sail: "47"},
		},
	}

	n := len(s.Skippers)
	for i := 0; i < demoRaces; i++ {
		finish := make([]string, 0, n)
		for j := 0; j < n; j++ {
			k := (j + 4*i) % n
			if i%2 == 1 {
				k = (n - 1 - j + 4*i) % n
			}
			finish = append(finish, s.Skippers[k].ID)
		}

		race := Race{}
		switch i {
		case 0:
			race.Status = map[string]string{"neil": "dns"}
		case 1:
			race.Status = map[string]string{"ivy": "dnf"}
		}
		for _, id := range finish {
			if _, absent := race.Status[id]; !absent {
				race.Finish = append(race.Finish, id)
			}
		}
		s.Races = append(s.Races, race)
	}
	return s
}

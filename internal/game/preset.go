package game

import "fmt"

// DefaultPresetID 默认预设
const DefaultPresetID = "default"

// Preset 开局预设：初始资金、牌堆与回合数
type Preset struct {
	ID            string   `json:"id" yaml:"id"`
	StartingMoney int      `json:"startingMoney" yaml:"starting_money"`
	StartingCars  int      `json:"startingCars" yaml:"starting_cars"`
	StartingCards int      `json:"startingCards" yaml:"starting_cards"`
	Turns         int      `json:"turns" yaml:"turns"` // 每位玩家当庄次数
	Cars          []Car    `json:"cars" yaml:"cars"`
	DcCards       []DcCard `json:"dcCards" yaml:"dc_cards"`
}

// Validate 检查预设是否可用
func (p *Preset) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("preset: empty id")
	}
	if p.Turns <= 0 {
		return fmt.Errorf("preset %s: turns must be positive", p.ID)
	}
	if p.StartingMoney < 0 {
		return fmt.Errorf("preset %s: negative starting money", p.ID)
	}
	return nil
}

// DefaultPreset 内置预设
func DefaultPreset() *Preset {
	p := &Preset{
		ID:            DefaultPresetID,
		StartingMoney: 17000,
		StartingCars:  1,
		StartingCards: 2,
		Turns:         3,
	}
	names := []string{"Roadster", "Coupe", "Sedan", "Wagon", "Pickup", "Van", "Convertible", "Hatchback"}
	for i := range 24 {
		p.Cars = append(p.Cars, Car{
			ID:        fmt.Sprintf("car-%02d", i+1),
			Name:      names[i%len(names)],
			ListPrice: 3000 + (i%8)*1000,
		})
	}
	titles := []string{"Rebate", "Trade-in", "Financing", "Lemon Law"}
	for i := range 24 {
		p.DcCards = append(p.DcCards, DcCard{
			ID:    fmt.Sprintf("dc-%02d", i+1),
			Title: titles[i%len(titles)],
			Bonus: 500 * (1 + i%4),
		})
	}
	return p
}

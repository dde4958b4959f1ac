package game

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Car 车辆
type Car struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	ListPrice int    `json:"listPrice" yaml:"list_price"`
}

// DcCard 经销商卡（Dealer's Choice），Bonus 为打出时获得的资金
type DcCard struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Bonus int    `json:"bonus" yaml:"bonus"`
}

// Player 玩家
//
// 身份（ID）在会话生命周期内不变，处理器用指针比较做授权判断。
// 资金和库存归规则引擎所有，这里只提供并发安全的存取。
type Player struct {
	ID     string
	Name   string
	UserID string

	mu      sync.RWMutex
	money   int
	cars    map[string]*Car
	dcCards map[string]*DcCard
}

// NewPlayer 创建玩家
func NewPlayer(userID, name string) *Player {
	return &Player{
		ID:      uuid.NewString(),
		Name:    name,
		UserID:  userID,
		cars:    make(map[string]*Car),
		dcCards: make(map[string]*DcCard),
	}
}

// Money 当前资金
func (p *Player) Money() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.money
}

// AddMoney 增减资金
func (p *Player) AddMoney(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.money += delta
}

// Car 按 ID 查找持有的车辆
func (p *Player) Car(id string) (*Car, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.cars[id]
	return c, ok
}

// AddCar 获得车辆
func (p *Player) AddCar(c *Car) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cars[c.ID] = c
}

// RemoveCar 移除车辆
func (p *Player) RemoveCar(id string) (*Car, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.cars[id]
	delete(p.cars, id)
	return c, ok
}

// Cars 按 ID 排序的车辆列表
func (p *Player) Cars() []*Car {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Car, 0, len(p.cars))
	for _, c := range p.cars {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Car) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// DcCard 按 ID 查找持有的经销商卡
func (p *Player) DcCard(id string) (*DcCard, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.dcCards[id]
	return c, ok
}

// AddDcCard 获得经销商卡
func (p *Player) AddDcCard(c *DcCard) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dcCards[c.ID] = c
}

// RemoveDcCard 移除经销商卡
func (p *Player) RemoveDcCard(id string) (*DcCard, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.dcCards[id]
	delete(p.dcCards, id)
	return c, ok
}

// DcCards 按 ID 排序的经销商卡列表
func (p *Player) DcCards() []*DcCard {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*DcCard, 0, len(p.dcCards))
	for _, c := range p.dcCards {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *DcCard) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// IndexOf 返回玩家在列表中的位置，不存在时返回 -1
func IndexOf(players []*Player, p *Player) int {
	return slices.Index(players, p)
}

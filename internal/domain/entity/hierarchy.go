package entity

import "time"

// Hierarchy представляет 4-уровневую топологию производства:
// Enterprise -> Site -> Area -> Machine.
// Каждый нелистовой уровень хранит суммарное число наблюдений всех потомков.
// Инвариант: totalCount узла равен сумме totalCount его детей, потому что
// каждая исходная строка добавляется ровно один раз на каждом из четырех уровней.
type Hierarchy struct {
	Enterprises map[string]*EnterpriseNode `json:"enterprises"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// EnterpriseNode - узел уровня предприятия
type EnterpriseNode struct {
	TotalCount int64                `json:"total_count"`
	Sites      map[string]*SiteNode `json:"sites"`
}

// SiteNode - узел уровня площадки
type SiteNode struct {
	TotalCount int64                `json:"total_count"`
	Areas      map[string]*AreaNode `json:"areas"`
}

// AreaNode - узел уровня участка
type AreaNode struct {
	TotalCount int64                   `json:"total_count"`
	Machines   map[string]*MachineNode `json:"machines"`
}

// MachineNode - листовой узел: станок и наблюдаемые на нем измерения
type MachineNode struct {
	TotalCount   int64    `json:"total_count"`
	Measurements []string `json:"measurements"`
}

// NewHierarchy создает пустую топологию
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		Enterprises: make(map[string]*EnterpriseNode),
		GeneratedAt: time.Now(),
	}
}

// AddObservation добавляет одну агрегированную строку в дерево.
// Отсутствующие узлы-предки создаются, count добавляется к totalCount
// каждого из четырех уровней ровно один раз, имя измерения добавляется
// в список станка с семантикой множества.
func (h *Hierarchy) AddObservation(enterprise, site, area, machine, measurement string, count int64) {
	ent, ok := h.Enterprises[enterprise]
	if !ok {
		ent = &EnterpriseNode{Sites: make(map[string]*SiteNode)}
		h.Enterprises[enterprise] = ent
	}
	ent.TotalCount += count

	siteNode, ok := ent.Sites[site]
	if !ok {
		siteNode = &SiteNode{Areas: make(map[string]*AreaNode)}
		ent.Sites[site] = siteNode
	}
	siteNode.TotalCount += count

	areaNode, ok := siteNode.Areas[area]
	if !ok {
		areaNode = &AreaNode{Machines: make(map[string]*MachineNode)}
		siteNode.Areas[area] = areaNode
	}
	areaNode.TotalCount += count

	machineNode, ok := areaNode.Machines[machine]
	if !ok {
		machineNode = &MachineNode{}
		areaNode.Machines[machine] = machineNode
	}
	machineNode.TotalCount += count
	machineNode.Measurements = appendUnique(machineNode.Measurements, measurement)
}

// Clone возвращает глубокую копию топологии
func (h *Hierarchy) Clone() *Hierarchy {
	clone := &Hierarchy{
		Enterprises: make(map[string]*EnterpriseNode, len(h.Enterprises)),
		GeneratedAt: h.GeneratedAt,
	}

	for entName, ent := range h.Enterprises {
		entClone := &EnterpriseNode{
			TotalCount: ent.TotalCount,
			Sites:      make(map[string]*SiteNode, len(ent.Sites)),
		}
		for siteName, site := range ent.Sites {
			siteClone := &SiteNode{
				TotalCount: site.TotalCount,
				Areas:      make(map[string]*AreaNode, len(site.Areas)),
			}
			for areaName, area := range site.Areas {
				areaClone := &AreaNode{
					TotalCount: area.TotalCount,
					Machines:   make(map[string]*MachineNode, len(area.Machines)),
				}
				for machineName, machine := range area.Machines {
					areaClone.Machines[machineName] = &MachineNode{
						TotalCount:   machine.TotalCount,
						Measurements: append([]string(nil), machine.Measurements...),
					}
				}
				siteClone.Areas[areaName] = areaClone
			}
			entClone.Sites[siteName] = siteClone
		}
		clone.Enterprises[entName] = entClone
	}

	return clone
}

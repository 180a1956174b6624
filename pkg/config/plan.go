package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RegionTables names the tables to analyze in one region. No tables means every table.
type RegionTables struct {
	Region string   `yaml:"region"`
	Tables []string `yaml:"tables"`
}

// RegionPlan keeps regions in the order they were declared so task order is reproducible
type RegionPlan []RegionTables

// UnmarshalYAML accepts either a list of {region, tables} entries or a mapping of
// region to table list. Mapping order is preserved.
func (p *RegionPlan) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var entries []RegionTables
		if err := node.Decode(&entries); err != nil {
			return err
		}
		*p = entries
		return nil
	case yaml.MappingNode:
		plan := make(RegionPlan, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var tables []string
			if err := node.Content[i+1].Decode(&tables); err != nil {
				return fmt.Errorf("region %s: %w", node.Content[i].Value, err)
			}
			plan = append(plan, RegionTables{Region: node.Content[i].Value, Tables: tables})
		}
		*p = plan
		return nil
	default:
		return fmt.Errorf("line %d: regions must be a list or a mapping", node.Line)
	}
}

// Add appends tables to a region, creating the region entry on first use
func (p *RegionPlan) Add(region string, tables ...string) {
	for i := range *p {
		if (*p)[i].Region == region {
			(*p)[i].Tables = append((*p)[i].Tables, tables...)
			return
		}
	}
	*p = append(*p, RegionTables{Region: region, Tables: tables})
}

// Regions lists region names in plan order
func (p RegionPlan) Regions() []string {
	regions := make([]string, len(p))
	for i, rt := range p {
		regions[i] = rt.Region
	}
	return regions
}

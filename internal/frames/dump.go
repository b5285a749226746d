package frames

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hachi-lang/hachi/internal/zeropage"
)

// The dump mirrors what later codegen reads off the frame map, in a stable
// order (functions lexical, slots by offset) so dumps diff cleanly across
// rebuilds.

type dumpDoc struct {
	Functions []dumpFrame `yaml:"functions"`
	Stats     Stats       `yaml:"stats"`
}

type dumpFrame struct {
	Name  string     `yaml:"name"`
	Group int        `yaml:"group"`
	Base  string     `yaml:"base"`
	Size  int        `yaml:"size"`
	Slots []dumpSlot `yaml:"slots,omitempty"`
}

type dumpSlot struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Type     string `yaml:"type"`
	Size     int    `yaml:"size"`
	Offset   int    `yaml:"offset"`
	Location string `yaml:"loc"`
	Address  string `yaml:"addr"`
	Score    int    `yaml:"score,omitempty"`
}

// EncodeYAML renders a successful allocation result as YAML.
func EncodeYAML(result *Result) ([]byte, error) {
	if !result.OK {
		return nil, fmt.Errorf("refusing to dump a failed allocation")
	}
	doc := dumpDoc{Stats: result.Stats}
	for _, name := range result.FrameMap.FunctionNames() {
		frame := result.FrameMap[name]
		df := dumpFrame{
			Name:  frame.FunctionName,
			Group: frame.GroupID,
			Base:  hexAddr(frame.BaseAddress),
			Size:  frame.TotalSize,
		}
		for _, slot := range frame.Slots {
			df.Slots = append(df.Slots, dumpSlot{
				Name:     slot.Name,
				Kind:     slot.Kind.String(),
				Type:     slot.Type.String(),
				Size:     slot.Size,
				Offset:   slot.Offset,
				Location: slot.Location.String(),
				Address:  hexAddr(slot.Address),
				Score:    scoreForDump(slot),
			})
		}
		doc.Functions = append(doc.Functions, df)
	}
	return yaml.Marshal(&doc)
}

func hexAddr(addr int) string {
	if addr <= 0xFF {
		return fmt.Sprintf("$%02X", addr)
	}
	return fmt.Sprintf("$%04X", addr)
}

// scoreForDump hides the sentinel mandatory score; the annotation already
// tells the reader why the slot is in zero page.
func scoreForDump(slot *FrameSlot) int {
	if slot.Score == zeropage.MandatoryScore {
		return 0
	}
	return slot.Score
}

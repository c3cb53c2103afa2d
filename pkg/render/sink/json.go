package sink

import "github.com/matzehuels/gridlay/pkg/scene"

// RenderJSON exports the scene as indented JSON. The output reads back with
// [scene.Unmarshal].
func RenderJSON(s scene.Scene) ([]byte, error) {
	data, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

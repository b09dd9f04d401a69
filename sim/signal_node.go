package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/simobility/shortterm/engine/agent"
	"github.com/simobility/shortterm/engine/network"
	"github.com/simobility/shortterm/engine/signal"
)

// AttachSignalController schedules ctrl as a non-spatial Agent anchored at
// node, exercising engine/signal.Controller through the same Agent/Role
// contract every mobile Traveler uses — the Role contract's infrastructure
// worked example, wired into an actual Simulation rather than left as a
// standalone test double. The Agent id is derived from the Node id, in its
// own id space above the configured agent population (callers scheduling
// agents with ids colliding with 1<<32+nodeId should renumber one side).
func (s *Simulation) AttachSignalController(node network.NodeID, ctrl *signal.Controller, startMs int64) error {
	n, ok := s.net.Node(node)
	if !ok {
		return fmt.Errorf("sim: %w: node %d", ErrNetworkInconsistency, node)
	}
	if !n.Signaled {
		return fmt.Errorf("sim: node %d: %w: not marked Signaled", node, ErrConfiguration)
	}

	id := int64(1)<<32 + int64(node)
	a := agent.New(id, startMs, true, mgl64.Vec2{}, s.wg.Phase())
	a.ExternalDBID = uuid.New()
	a.SetRole(ctrl)
	s.wg.ScheduleEntity(a)
	return nil
}

var _ agent.Role = (*signal.Controller)(nil)

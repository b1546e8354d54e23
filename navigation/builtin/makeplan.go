package builtin

import (
	"context"

	"github.com/nav-stack/navcoordinator/navigation"
)

// MakePlanRequest is the Plan-On-Demand request shape (spec.md §4.4, §6
// make_plan service).
type MakePlanRequest struct {
	Start     *navigation.Pose // nil means "use the current robot pose"
	Goal      navigation.Pose
	Tolerance float64
}

// makePlan serves the stateless make_plan request. It is exclusive with an
// active goal (spec.md §4.4, SPEC_FULL.md supplemented feature #5: "the
// make_plan service is refused while a goal is active").
func (c *Coordinator) makePlan(ctx context.Context, req MakePlanRequest) (*navigation.Plan, error) {
	if c.hasActiveGoal() {
		return nil, navigation.NewInvalidGoalError("make_plan is unavailable while a goal is executing")
	}

	start, err := c.resolveStart(ctx, req.Start)
	if err != nil {
		return nil, err
	}

	if c.config.MakePlanClearCostmap && c.plannerCostmap != nil {
		c.plannerCostmap.SetConvexPolygonCost(clearWindow(start, 2*c.config.ClearingRadius), navigation.FreeCost)
	}

	plan, ok, err := c.globalPlanner.MakePlan(ctx, start, req.Goal)
	if err != nil {
		return nil, err
	}
	if ok && !plan.Empty() {
		return plan, nil
	}

	plan, found := c.searchOffsets(ctx, start, req.Goal, req.Tolerance)
	if !found {
		return &navigation.Plan{Frame: req.Goal.Frame}, nil
	}
	return plan, nil
}

// clearWindow is a placeholder polygon covering a square window of the given
// side length centered on pose, used to clear a local costmap region before
// planning.
func clearWindow(pose navigation.Pose, side float64) []navigation.Pose {
	half := side / 2
	x, y := pose.Position.X, pose.Position.Y
	corner := func(dx, dy float64) navigation.Pose {
		p := pose
		p.Position.X = x + dx
		p.Position.Y = y + dy
		return p
	}
	return []navigation.Pose{
		corner(-half, -half),
		corner(-half, half),
		corner(half, half),
		corner(half, -half),
	}
}

// searchOffsets implements the original planService's outward square-lattice
// search for a reachable goal within tolerance when the exact goal fails
// (spec.md §4.4; SPEC_FULL.md supplemented feature #8, Open Question #1).
//
// This is a faithful translation of the original C++, including its
// documented quirk: the outer max_offset loop starts at one search_increment
// and is bounded by <= tolerance, and the inner y/x offset loops skip any
// cell that isn't on the "outer ring" of the current max_offset (the
// x_offset < max_offset-1e-9 && y_offset < max_offset-1e-9 guard). When
// tolerance is not an exact multiple of search_increment, the final
// max_offset value can fall short of tolerance by less than one increment,
// and the ring at exactly max_offset == tolerance is never visited as an
// "outer ring" on its own pass — it is only reachable if a later max_offset
// iteration would exceed tolerance and therefore never runs. The net effect
// is that the outermost ring of cells within tolerance can be skipped
// entirely. This is preserved here exactly, not fixed (see DESIGN.md).
func (c *Coordinator) searchOffsets(
	ctx context.Context,
	start, goal navigation.Pose,
	tolerance float64,
) (*navigation.Plan, bool) {
	resolution := c.costmapResolution()
	searchIncrement := resolution * 3.0
	if tolerance > 0.0 && tolerance < searchIncrement {
		searchIncrement = tolerance
	}

	for maxOffset := searchIncrement; maxOffset <= tolerance; maxOffset += searchIncrement {
		for yOffset := 0.0; yOffset <= maxOffset; yOffset += searchIncrement {
			for xOffset := 0.0; xOffset <= maxOffset; xOffset += searchIncrement {
				// Don't search again inside the current outer layer: this is
				// the ring-skip condition from the original.
				if xOffset < maxOffset-1e-9 && yOffset < maxOffset-1e-9 {
					continue
				}

				for yMult := -1.0; yMult <= 1.0+1e-9; yMult += 2.0 {
					if yOffset < 1e-9 && yMult < -1.0+1e-9 {
						continue
					}
					for xMult := -1.0; xMult <= 1.0+1e-9; xMult += 2.0 {
						if xOffset < 1e-9 && xMult < -1.0+1e-9 {
							continue
						}

						candidate := goal
						candidate.Position.Y = goal.Position.Y + yOffset*yMult
						candidate.Position.X = goal.Position.X + xOffset*xMult

						plan, ok, err := c.globalPlanner.MakePlan(ctx, start, candidate)
						if err != nil || !ok || plan.Empty() {
							continue
						}

						if c.config.MakePlanAddUnreachableGoal {
							plan.Poses = append(plan.Poses, goal)
						}
						return plan, true
					}
				}
			}
		}
	}
	return nil, false
}

// costmapResolution returns costmapResolutionOverride when it is set (tests),
// and otherwise 0.05m, the default grid resolution the original ships with.
// The Costmap interface exposes no resolution, so the planner costmap is not
// consulted.
func (c *Coordinator) costmapResolution() float64 {
	if c.costmapResolutionOverride > 0 {
		return c.costmapResolutionOverride
	}
	return 0.05
}

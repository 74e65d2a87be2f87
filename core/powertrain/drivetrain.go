package powertrain

import (
	"fmt"

	"github.com/evsim/powertrain/core/logger"
	"github.com/evsim/powertrain/core/model"
)

// WheelDrive selects which axles the drive train powers.
type WheelDrive int

const (
	FrontDrive WheelDrive = iota
	RearDrive
	AllWheelDrive
)

func (w WheelDrive) String() string {
	switch w {
	case FrontDrive:
		return "front"
	case RearDrive:
		return "rear"
	case AllWheelDrive:
		return "all"
	default:
		return "unknown"
	}
}

// Wheel describes a single wheel. Its inertia assumes a thick ring with most
// of the mass near the rim.
type Wheel struct {
	Radius   float64 // m
	Width    float64 // m
	Mass     float64 // kg
	Pressure float64 // Pa
}

// Inertia is the wheel's moment of inertia in kg·m².
func (w Wheel) Inertia() float64 {
	return 0.75 * w.Mass * w.Radius * w.Radius
}

// Axle models a wheel axle with its wheels.
type Axle struct {
	Inertia   float64 // bare axle inertia, kg·m²
	Mass      float64 // bare axle mass, kg
	NumWheels int
	Wheel     Wheel
}

// TotalInertia is the axle plus wheel inertia in kg·m².
func (a Axle) TotalInertia() float64 {
	return a.Inertia + float64(a.NumWheels)*a.Wheel.Inertia()
}

// TotalMass is the axle plus wheel mass in kg.
func (a Axle) TotalMass() float64 {
	return a.Mass + float64(a.NumWheels)*a.Wheel.Mass
}

// Link is a validated connection between two component ports. Which side
// drives (supplies speed or voltage) and which loads (demands torque or
// current) is resolved every step, not fixed at assembly.
type Link struct {
	From string
	To   string
	Kind model.Kind
}

// LinkFlow is the resolved flow over one link for one step. From is the side
// the power leaves; Power is non-negative.
type LinkFlow struct {
	From            string
	To              string
	Kind            model.Kind
	Torque          float64 // N·m, mechanical links only
	AngularVelocity float64 // rad/s, mechanical links only
	Power           float64 // W
}

// Boundary node names used in the link table.
const (
	SourceBoundary = "source"
	WheelBoundary  = "wheels"
)

// DriveTrainConfig lists the components composing the path from the energy
// source boundary to the wheels.
type DriveTrainConfig struct {
	// Supply stages between the source boundary and the prime mover, in
	// source-to-prime order. May be empty.
	Supply []SupplyStage
	Prime  PrimeMover
	// Stages between the prime mover and the wheels, in prime-to-wheel
	// order. May be empty for a direct drive.
	Stages    []MechStage
	Brakes    *Brakes
	FrontAxle Axle
	RearAxle  Axle
	Drive     WheelDrive
}

// DriveTrain composes converters, links and brakes into the validated,
// acyclic path from the energy source boundary to the wheels, and owns the
// per-step causality resolution over that path.
type DriveTrain struct {
	id     string
	supply []SupplyStage
	prime  PrimeMover
	stages []MechStage
	brakes *Brakes
	front  Axle
	rear   Axle
	drive  WheelDrive
	links  []Link
}

// NewDriveTrain validates connectivity and returns the assembled drive
// train. A chain with mismatched or dangling ports is rejected with
// ConnectivityError; no simulation can start on it.
func NewDriveTrain(cfg DriveTrainConfig) (*DriveTrain, error) {
	if cfg.Prime == nil {
		return nil, &model.ConnectivityError{Detail: "drive train requires a prime mover"}
	}
	if cfg.Brakes == nil {
		return nil, &model.ConnectivityError{Detail: "drive train requires brakes"}
	}
	for _, a := range []Axle{cfg.FrontAxle, cfg.RearAxle} {
		if a.Wheel.Radius <= 0 || a.NumWheels < 1 {
			return nil, &model.ConnectivityError{Detail: "axles require at least one wheel with positive radius"}
		}
	}

	d := &DriveTrain{
		id:     newID("DriveTrain"),
		supply: cfg.Supply,
		prime:  cfg.Prime,
		stages: cfg.Stages,
		brakes: cfg.Brakes,
		front:  cfg.FrontAxle,
		rear:   cfg.RearAxle,
		drive:  cfg.Drive,
	}

	seen := map[string]bool{cfg.Brakes.Name(): true}
	for _, c := range d.chain() {
		if seen[c.Name()] {
			return nil, &model.ConnectivityError{Detail: fmt.Sprintf("duplicate component name %q", c.Name())}
		}
		seen[c.Name()] = true
	}

	if err := d.wire(); err != nil {
		return nil, err
	}
	return d, nil
}

// chain returns the components in source-to-wheel order.
func (d *DriveTrain) chain() []Component {
	comps := make([]Component, 0, len(d.supply)+1+len(d.stages))
	for _, s := range d.supply {
		comps = append(comps, s)
	}
	comps = append(comps, d.prime)
	for _, s := range d.stages {
		comps = append(comps, s)
	}
	return comps
}

// wire builds the link table, checking port compatibility along the chain.
func (d *DriveTrain) wire() error {
	comps := d.chain()
	prevName := SourceBoundary
	prevPort := model.Port{Direction: model.PortOut, Kind: comps[0].Ports()[0].Kind}
	for _, c := range comps {
		ports := c.Ports()
		if len(ports) != 2 {
			return &model.ConnectivityError{Detail: fmt.Sprintf("%s: converters must expose an input and an output port", c.Name())}
		}
		if !prevPort.CompatibleWith(ports[0]) {
			return &model.ConnectivityError{Detail: fmt.Sprintf("dangling link: %s (%s) does not mate with %s (%s)",
				prevName, prevPort.Kind, c.Name(), ports[0].Kind)}
		}
		d.links = append(d.links, Link{From: prevName, To: c.Name(), Kind: ports[0].Kind})
		prevName = c.Name()
		prevPort = ports[1]
	}
	if prevPort.Kind != model.KindMechanical {
		return &model.ConnectivityError{Detail: fmt.Sprintf("wheel boundary needs a mechanical port, %s ends in %s",
			prevName, prevPort.Kind)}
	}
	d.links = append(d.links, Link{From: prevName, To: WheelBoundary, Kind: model.KindMechanical})
	return nil
}

func (d *DriveTrain) ID() string { return d.id }

// Links is the validated link table in source-to-wheel order.
func (d *DriveTrain) Links() []Link { return d.links }

// Brakes returns the friction brake component.
func (d *DriveTrain) Brakes() *Brakes { return d.brakes }

// Prime returns the prime mover.
func (d *DriveTrain) Prime() PrimeMover { return d.prime }

// SourceBoundaryKind is the energy domain expected from the vehicle's
// energy sources.
func (d *DriveTrain) SourceBoundaryKind() model.Kind {
	if len(d.supply) > 0 {
		return d.supply[0].Ports()[0].Kind
	}
	return d.prime.Ports()[0].Kind
}

// WheelRadius is the radius of the driven wheels in m.
func (d *DriveTrain) WheelRadius() float64 {
	if d.drive == RearDrive {
		return d.rear.Wheel.Radius
	}
	return d.front.Wheel.Radius
}

// TotalRatio is the product of all stage ratios: prime shaft speed per unit
// of wheel speed.
func (d *DriveTrain) TotalRatio() float64 {
	r := 1.0
	for _, s := range d.stages {
		r *= s.Ratio()
	}
	return r
}

// drivenAxleInertia is the inertia of the powered axles in kg·m².
func (d *DriveTrain) drivenAxleInertia() float64 {
	switch d.drive {
	case FrontDrive:
		return d.front.TotalInertia()
	case RearDrive:
		return d.rear.TotalInertia()
	default:
		return d.front.TotalInertia() + d.rear.TotalInertia()
	}
}

// InertiaAtWheel is the drive train's rotating inertia reflected through
// every ratio down to the wheel, in kg·m². Recomputed per call so commanded
// ratio changes are picked up.
func (d *DriveTrain) InertiaAtWheel() float64 {
	inertia := d.drivenAxleInertia()
	ratio := 1.0
	for i := len(d.stages) - 1; i >= 0; i-- {
		inertia += d.stages[i].Inertia() * ratio * ratio
		ratio *= d.stages[i].Ratio()
	}
	inertia += d.prime.ShaftInertia() * ratio * ratio
	return inertia
}

// Mass is the drive train mass in kg, counting axles and any stage that
// reports one.
func (d *DriveTrain) Mass() float64 {
	mass := d.front.TotalMass() + d.rear.TotalMass()
	for _, s := range d.stages {
		if g, ok := s.(*GearStage); ok {
			mass += g.Mass()
		}
	}
	return mass
}

// Resolution is the outcome of causality resolution for one step: the
// torque balance at the wheel, the signed power at the source boundary and
// the per-link flows that produced them.
type Resolution struct {
	PrimeSpeed     float64 // rad/s at the prime mover shaft
	DriveTorque    float64 // N·m traction at the wheel
	RegenTorque    float64 // N·m absorbed at the wheel by the prime mover
	FrictionTorque float64 // N·m absorbed at the wheel by the friction brakes
	// SourcePower is the power at the energy source boundary in W.
	// Positive discharges the sources, negative charges them.
	SourcePower   float64
	Links         []LinkFlow
	ConverterLoss float64 // W lost across converters this step
	FrictionLoss  float64 // W dissipated by the friction brakes this step
	// Violation is set when regeneration was demanded through a
	// non-reversible converter and diverted to the brakes. Recoverable.
	Violation *model.ReversibilityViolation
}

// RetardTorque is the total braking torque at the wheel in N·m.
func (r *Resolution) RetardTorque() float64 {
	return r.RegenTorque + r.FrictionTorque
}

// Resolve performs causality resolution for one step. The wheel speed from
// the previous step's motion is propagated upstream through every ratio, the
// prime mover produces or absorbs torque at the resolved shaft speed, and
// the resulting torque and power are propagated back through the chain. The
// sign of the power reaching the source boundary selects discharge versus
// regenerative charge.
func (d *DriveTrain) Resolve(wheelSpeed float64, cmd model.Commands, log logger.Logger) (*Resolution, error) {
	res := &Resolution{}

	// upstream speed pass: wheel toward prime mover
	speeds := make([]float64, len(d.stages)+1) // speeds[i] = input speed of stage i; last = wheel
	speeds[len(d.stages)] = wheelSpeed
	cur := wheelSpeed
	for i := len(d.stages) - 1; i >= 0; i-- {
		cur *= d.stages[i].Ratio()
		speeds[i] = cur
	}
	res.PrimeSpeed = cur

	if err := d.resolveDrive(res, cmd.Throttle); err != nil {
		return nil, err
	}
	if err := d.resolveBraking(res, wheelSpeed, cmd.Brake, log); err != nil {
		return nil, err
	}
	return res, nil
}

// resolveDrive propagates the commanded traction from the prime mover down
// to the wheel and the implied demand up to the source boundary.
func (d *DriveTrain) resolveDrive(res *Resolution, throttle float64) error {
	in, out, err := d.prime.Drive(res.PrimeSpeed, throttle)
	if err != nil {
		return err
	}
	res.ConverterLoss += in.Power() - out.Power()

	q := out
	prev := d.prime.Name()
	for _, st := range d.stages {
		res.Links = append(res.Links, LinkFlow{
			From: prev, To: st.Name(), Kind: model.KindMechanical,
			Torque: q.Torque(), AngularVelocity: q.AngularVelocity(), Power: q.Power(),
		})
		next, err := st.Forward(q, 0)
		if err != nil {
			return err
		}
		res.ConverterLoss += q.Power() - next.Power()
		q = next
		prev = st.Name()
	}
	res.Links = append(res.Links, LinkFlow{
		From: prev, To: WheelBoundary, Kind: model.KindMechanical,
		Torque: q.Torque(), AngularVelocity: q.AngularVelocity(), Power: q.Power(),
	})
	res.DriveTorque = q.Torque()

	// demand pass: prime mover input back to the source boundary
	demand := in
	downstream := d.prime.Name()
	for i := len(d.supply) - 1; i >= 0; i-- {
		res.Links = append(res.Links, LinkFlow{
			From: d.supply[i].Name(), To: downstream, Kind: demand.Kind(), Power: demand.Power(),
		})
		up, err := d.supply[i].Supply(demand)
		if err != nil {
			return err
		}
		res.ConverterLoss += up.Power() - demand.Power()
		demand = up
		downstream = d.supply[i].Name()
	}
	res.Links = append(res.Links, LinkFlow{
		From: SourceBoundary, To: downstream, Kind: demand.Kind(), Power: demand.Power(),
	})
	res.SourcePower += demand.Power()
	return nil
}

// resolveBraking splits the braking demand between regeneration and
// friction. The reversible prime mover absorbs torque up to its capability
// at the resolved shaft speed first; the friction brakes take the remainder.
// A non-reversible converter anywhere on the return path diverts the whole
// demand to the friction brakes and records the violation.
func (d *DriveTrain) resolveBraking(res *Resolution, wheelSpeed, brake float64, log logger.Logger) error {
	if brake <= 0 {
		return nil
	}
	request := brake * d.brakes.MaxTorque()
	if wheelSpeed <= 0 {
		// holding torque at standstill dissipates nothing
		res.FrictionTorque = d.brakes.Clamp(request)
		return nil
	}

	reversible := d.prime.Reversible()
	for _, s := range d.supply {
		if !s.Reversible() {
			reversible = false
		}
	}
	if !reversible || d.prime.RegenLimit(res.PrimeSpeed) == 0 {
		res.Violation = &model.ReversibilityViolation{
			Component: d.prime.Name(),
			Power:     request * wheelSpeed,
		}
		log.Warnf("%s cannot regenerate, diverting %.1f N·m to friction brakes", d.prime.Name(), request)
		res.FrictionTorque = d.brakes.Clamp(request)
		res.FrictionLoss = res.FrictionTorque * wheelSpeed
		return nil
	}

	// back-propagate the request to find the shaft torque it implies
	q := model.Mechanical(request, wheelSpeed)
	for i := len(d.stages) - 1; i >= 0; i-- {
		up, err := d.stages[i].Backward(q, 0)
		if err != nil {
			return err
		}
		q = up
	}
	shaftReq := q.Torque()

	// scale the wheel-side request so the shaft stays within capability;
	// the chain is linear in torque at fixed speeds
	scale := 1.0
	if limit := d.prime.RegenLimit(res.PrimeSpeed); shaftReq > limit {
		scale = limit / shaftReq
	}
	res.RegenTorque = request * scale
	res.FrictionTorque = d.brakes.Clamp(request - res.RegenTorque)
	res.FrictionLoss = res.FrictionTorque * wheelSpeed

	// regen flows wheel-to-source: record links in the resolved direction
	q = model.Mechanical(res.RegenTorque, wheelSpeed)
	from := WheelBoundary
	for i := len(d.stages) - 1; i >= 0; i-- {
		res.Links = append(res.Links, LinkFlow{
			From: from, To: d.stages[i].Name(), Kind: model.KindMechanical,
			Torque: q.Torque(), AngularVelocity: q.AngularVelocity(), Power: q.Power(),
		})
		up, err := d.stages[i].Backward(q, 0)
		if err != nil {
			return err
		}
		res.ConverterLoss += q.Power() - up.Power()
		q = up
		from = d.stages[i].Name()
	}
	res.Links = append(res.Links, LinkFlow{
		From: from, To: d.prime.Name(), Kind: model.KindMechanical,
		Torque: q.Torque(), AngularVelocity: q.AngularVelocity(), Power: q.Power(),
	})

	absorbed, elec, err := d.prime.Recover(res.PrimeSpeed, q.Torque())
	if err != nil {
		return err
	}
	res.ConverterLoss += absorbed*res.PrimeSpeed - (-elec.Power())

	// return path through the supply stages toward the sources
	ret := elec
	from = d.prime.Name()
	for i := len(d.supply) - 1; i >= 0; i-- {
		res.Links = append(res.Links, LinkFlow{
			From: from, To: d.supply[i].Name(), Kind: ret.Kind(), Power: -ret.Power(),
		})
		up, err := d.supply[i].Backward(ret, 0)
		if err != nil {
			return err
		}
		res.ConverterLoss += (-ret.Power()) - (-up.Power())
		ret = up
		from = d.supply[i].Name()
	}
	res.Links = append(res.Links, LinkFlow{
		From: from, To: SourceBoundary, Kind: ret.Kind(), Power: -ret.Power(),
	})
	res.SourcePower += ret.Power()
	return nil
}

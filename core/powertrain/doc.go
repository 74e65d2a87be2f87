// Package powertrain models a vehicle as a graph of energy-domain
// components: energy sources (battery, fuel tank), converters (electric
// motor, combustion engine, fuel cell, gearbox, differential), friction
// brakes, the vehicle body and the drive train that composes them.
//
// The drive train owns per-step causality resolution: angular velocity is
// propagated from the wheel boundary upstream through every transformation
// ratio, the prime mover produces (or absorbs) torque at that resolved shaft
// speed, and torque and power are then propagated back down the chain with
// per-stage efficiency losses. The sign of the power reaching the energy
// source boundary decides between discharge and regenerative charge.
//
// Key components:
//   - Converter: Forward/Backward transformation with an audited operating point.
//   - PrimeMover: converter driven from the shaft side (Drive/Recover).
//   - MechStage: fixed-ratio mechanical converter (gearbox, differential).
//   - SupplyStage: converter on the source-to-prime-mover path (fuel cell).
//   - DriveTrain: validated component graph plus the causality resolver.
//   - Vehicle: drive train + body + energy sources + ECU, validated at assembly.
//
// All components are decoupled via interfaces; assembly rejects incomplete
// or mismatched graphs with ConnectivityError before a simulation starts.
package powertrain

// Package milp models and solves small mixed-integer linear programs.
//
// A Problem is built from bounded variables, linear constraints and a
// minimized objective. Solve runs a depth-first branch and bound whose LP
// relaxations are solved with gonum's simplex implementation
// (gonum.org/v1/gonum/optimize/convex/lp). The matrices are dense, so the
// package targets rosters with a few thousand variables at most; a time
// limit bounds every solve.
package milp

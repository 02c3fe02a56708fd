// Package strix runs dual-stack programs that compute over a prime field
// while recording an arithmetic circuit.
//
// A program manipulates two stacks. The Outside stack holds concrete field
// elements. The Inside stack holds wires of an R1CS circuit: every field
// operation applied to it appends constraints instead of computing values.
// Move transfers elements between the stacks, injecting Outside values as
// circuit constants or reading Inside wires back through their witness.
//
// # Running a program
//
//	vm, err := strix.NewVM(strix.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	program, err := strix.ParseProgram(`
//		outside one
//		outside one
//		outside add
//		move 1 outside inside
//		inside inv
//	`)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := vm.Execute(ctx, program, strix.Inputs{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.InsideValues, res.Circuit.NumConstraints())
//
// # Errors
//
// Every error returned by a VM is a *StrixError. Execution failures carry
// the index of the failing op and wrap the underlying typed error, so both
// errors.Is(err, &strix.StrixError{Code: strix.ErrStackUnderflow}) and
// errors.As(err, &underflow) work.
//
// # Encoding
//
// Programs have a stable binary encoding (EncodeProgram, DecodeProgram), a
// checksummed container (MarshalProgram, UnmarshalProgram) and a text
// assembly (ParseProgram, Program.String).
package strix

// Package lower turns desugared rial units into LLVM IR modules.
//
// Lowering is split into three passes driven by Engine:
//
//   - DeclareStructs registers an opaque struct type for every struct;
//   - DeclareUnit fills struct layouts and bases, registers function
//     signatures under their mangled names and folds global initializers;
//   - LowerUnit lowers function bodies against the frozen registry.
//
// The first two passes may run for many units concurrently; a barrier
// must separate them because layouts refer to structs of other units.
// Recoverable problems are reported through diag.Reporter and lowering
// carries on; only a missing declaration aborts a unit with *FatalError.
package lower

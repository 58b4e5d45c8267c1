// Package fuzztests houses Go fuzz harnesses that exercise the export core
// on arbitrary inputs: byte-derived dependency graphs through the resolver
// and raw byte strings through identifier sanitization. Its goal is to
// smoke test robustness and guard against panics or non-termination.
//
// Назначение: гонять резолвер на произвольных графах и проверять инварианты
// плана; гонять санитайзер имён на произвольных строках.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/depgraph, internal/ctypes, internal/testkit,
// internal/types.

package fuzztests

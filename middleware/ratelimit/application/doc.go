// Package application decide allow/deny por cliente e controla vagas de
// concorrência, sem depender de HTTP.
package application

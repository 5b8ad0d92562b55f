// Package service contains the business logic.
//
// It sits between the handler layer and the synonym pipeline.
// It receives validated requests from the handler, asks the
// pipeline for candidates and shapes the answer the client gets.
package service

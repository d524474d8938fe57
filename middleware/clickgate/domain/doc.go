// Package domain define contratos e tipos de domínio do gate de navegação por taxa de cliques.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar a classificação
// (CLEAN/BLOCKED) dos detalhes de armazenamento, agendamento e transporte.
package domain

// Package domain define contratos e tipos de domínio do throttle por ação.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar a regra
// (janela fixa + bloqueio) dos detalhes de armazenamento.
package domain

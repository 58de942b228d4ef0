// Package fx resolve moeda e câmbio para exibir preços em USD na moeda local.
//
// A tabela de câmbio vem de um endpoint público e fica em cache por uma hora.
// Se a busca falhar, responde com a tabela estática de referência sem marcar
// o cache como fresco: a próxima chamada tenta a rede de novo. Refreshes
// concorrentes com cache vencido viram uma única chamada de saída.
//
// A precisão é de aproximação horária; não é um feed de câmbio em tempo real.
package fx

// Package localization junta location e fx para responder "como este preço
// em USD aparece para quem está chamando".
//
// O país vem do chamador ou, se vazio, do Resolver. Preços de plano passam
// pelo câmbio; as faixas de orçamento não: saem de uma tabela regional fixa.
package localization

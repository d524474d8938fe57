// Package application contém os casos de uso do gate: classificação por taxa de
// cliques (RateClassifier) e decisão de navegação (NavigationGate).
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: NavigationGate.RequestNavigation(ctx, url, nav) retorna uma domain.Navigation
// (allowed/denied + destino + atraso).
package application
